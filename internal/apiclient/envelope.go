package apiclient

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/models"
)

// Error codes the client assigns when the server never produced a usable envelope.
const (
	CodeNetwork         = "Network error"
	CodeInvalidEnvelope = "INVALID_ENVELOPE"
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
)

//go:embed envelope.schema.json
var envelopeSchemaSource string

var envelopeSchema = jsonschema.MustCompileString("envelope.schema.json", envelopeSchemaSource)

// Metadata carries auxiliary response information.
type Metadata struct {
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// Envelope is the normalized backend response. A failed envelope never carries data.
type Envelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message,omitempty"`
	Error    string          `json:"error,omitempty"`
	Details  json.RawMessage `json:"details,omitempty"`
	Metadata *Metadata       `json:"metadata,omitempty"`

	// Status is the HTTP status code, or 0 when no response was received.
	Status int `json:"-"`

	kind  apperror.Kind
	cause error
}

// HasData reports whether the envelope carries a non-null payload.
func (e Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Pagination returns the pagination block, if any.
func (e Envelope) Pagination() *models.Pagination {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata.Pagination
}

// Err converts a failed envelope into a typed error. It returns nil for successful envelopes.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}

	message := e.Message
	if message == "" {
		message = e.Error
	}
	if message == "" {
		message = http.StatusText(e.Status)
	}
	if message == "" {
		message = "Request failed"
	}

	return &apperror.Error{
		Kind:    e.classify(),
		Message: message,
		Code:    e.Error,
		Status:  e.Status,
		Details: e.Details,
		Err:     e.cause,
	}
}

func (e Envelope) classify() apperror.Kind {
	if e.kind != "" {
		return e.kind
	}
	switch {
	case e.Status == 0:
		return apperror.KindNetwork
	case e.Status == http.StatusUnauthorized:
		return apperror.KindAuth
	case e.Status == http.StatusNotFound, strings.EqualFold(e.Error, CodeNotFound):
		return apperror.KindNotFound
	case strings.Contains(strings.ToLower(e.Message), "not found"):
		// Older backends only signal absence through the message text.
		return apperror.KindNotFound
	default:
		return apperror.KindAPI
	}
}

// Decode unmarshals the envelope payload into T, or returns the envelope's error.
func Decode[T any](env Envelope) (T, error) {
	var out T
	if err := env.Err(); err != nil {
		return out, err
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &apperror.Error{
			Kind:    apperror.KindAPI,
			Message: "invalid response payload",
			Code:    CodeInvalidEnvelope,
			Status:  env.Status,
			Err:     err,
		}
	}
	return out, nil
}

func networkEnvelope(err error) Envelope {
	return Envelope{
		Success: false,
		Message: CodeNetwork,
		Error:   CodeNetwork,
		kind:    apperror.KindNetwork,
		cause:   err,
	}
}

func failureEnvelope(status int, kind apperror.Kind, code, message string, err error) Envelope {
	return Envelope{
		Success: false,
		Message: message,
		Error:   code,
		Status:  status,
		kind:    kind,
		cause:   err,
	}
}

// parseEnvelope turns a raw HTTP response into an Envelope that satisfies the envelope invariant.
func parseEnvelope(status int, body []byte, strict bool) Envelope {
	ok := status >= 200 && status < 300

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil || len(bytes.TrimSpace(body)) == 0 {
		if ok {
			return failureEnvelope(status, apperror.KindAPI, CodeInvalidEnvelope, "invalid response envelope", err)
		}
		return failureEnvelope(status, "", "", http.StatusText(status), err)
	}
	env.Status = status

	if strict {
		if err := ValidateEnvelope(body); err != nil && env.Success {
			return failureEnvelope(status, apperror.KindAPI, CodeInvalidEnvelope, "invalid response envelope", err)
		}
	}

	if !ok {
		env.Success = false
	}
	if env.Success && !env.HasData() {
		return failureEnvelope(status, apperror.KindAPI, CodeInvalidEnvelope, "invalid response envelope", nil)
	}
	if !env.Success {
		env.Data = nil
	}
	return env
}

// ValidateEnvelope checks a raw response body against the envelope JSON schema.
func ValidateEnvelope(body []byte) error {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return err
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return fmt.Errorf("envelope schema: %w", err)
	}
	return nil
}

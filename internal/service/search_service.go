package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/dto"
)

// SearchService runs free-text search across events and places.
type SearchService interface {
	Search(ctx context.Context, query dto.SearchQuery) (dto.SearchResult, error)
}

type searchService struct {
	api       apiclient.Requester
	validator *validator.Validate
}

// NewSearchService constructs the search service.
func NewSearchService(api apiclient.Requester, validate *validator.Validate) SearchService {
	return &searchService{api: api, validator: validate}
}

func (s *searchService) Search(ctx context.Context, query dto.SearchQuery) (dto.SearchResult, error) {
	if err := validatePayload(s.validator, query); err != nil {
		return dto.SearchResult{}, err
	}
	if query.Type == "" {
		query.Type = dto.SearchAll
	}

	values := url.Values{"q": {query.Query}, "type": {query.Type}}
	return apiclient.Decode[dto.SearchResult](s.api.Do(ctx, http.MethodGet, "/search", nil, apiclient.WithQuery(values)))
}

package discussion

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/observability"
	"github.com/noah-isme/kultura-go/internal/service"
	"github.com/noah-isme/kultura-go/internal/store"
)

// MessageStatus is the delivery state of a message in the room.
type MessageStatus string

const (
	StatusPending   MessageStatus = "pending"
	StatusConfirmed MessageStatus = "confirmed"
	StatusFailed    MessageStatus = "failed"
)

const (
	opMessagesFetch = "MESSAGES_FETCH"
	opMessageSend   = "MESSAGE_SEND"
	opMessageEdit   = "MESSAGE_EDIT"
	opMessageDelete = "MESSAGE_DELETE"
	opMessageRetire = "MESSAGE_DISCARD"
	slotMessages    = "messages"
)

// RoomMessage is a message plus its local delivery state. LocalID is set for
// messages sent from this client.
type RoomMessage struct {
	models.Message
	LocalID string
	Status  MessageStatus
}

// RoomState is the message list of one thread.
type RoomState struct {
	ThreadID string
	Messages []RoomMessage
}

type sendResult struct {
	localID string
	message models.Message
}

type sendFailure struct {
	localID string
}

type fetchResult struct {
	threadID string
	messages []models.Message
}

// Room is the message list of the thread the gate has open.
type Room struct {
	*store.Store[RoomState]
	gate     *Gate
	messages service.MessageService
	notifier store.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRoom builds the message room on top of gate.
func NewRoom(gate *Gate, messages service.MessageService, notifier store.Notifier, logger zerolog.Logger) *Room {
	return &Room{
		Store:    store.New("messages", func() RoomState { return RoomState{} }, reduceRoom, logger),
		gate:     gate,
		messages: messages,
		notifier: notifier,
		logger:   logger.With().Str("component", "discussion_room").Logger(),
		now:      time.Now,
	}
}

// Load fetches the thread's messages. Messages still being sent are kept.
func (r *Room) Load(ctx context.Context, eventID string) ([]RoomMessage, error) {
	thread, err := r.gate.Access(eventID)
	if err != nil {
		return nil, err
	}

	seq := r.BeginWith(opMessagesFetch, slotMessages, thread.ID)
	messages, err := r.messages.ListByThread(ctx, thread.ID)
	if err != nil {
		store.Fail(ctx, r.Store, r.notifier, opMessagesFetch, slotMessages, seq, err)
		return nil, err
	}
	r.Dispatch(store.Action{Type: opMessagesFetch + store.SuffixSuccess, Slot: slotMessages, Seq: seq, Payload: fetchResult{threadID: thread.ID, messages: messages}})
	return r.Messages(), nil
}

// Send posts content to the thread of eventID. The message shows up as pending
// right away and becomes confirmed, or failed, when the server answers.
// Content is sent exactly as given.
func (r *Room) Send(ctx context.Context, eventID, content string) (models.Message, error) {
	if err := service.ValidateMessageContent(content); err != nil {
		return models.Message{}, err
	}
	thread, err := r.gate.Access(eventID)
	if err != nil {
		return models.Message{}, err
	}

	pending := RoomMessage{
		Message: models.Message{
			ThreadID:  thread.ID,
			Content:   content,
			Type:      models.MessageTypeText,
			CreatedAt: r.now().UTC(),
		},
		LocalID: uuid.NewString(),
		Status:  StatusPending,
	}
	seq := r.BeginWith(opMessageSend, "", pending)

	message, err := r.messages.Send(ctx, dto.MessageSendRequest{ThreadID: thread.ID, Content: content, Type: models.MessageTypeText})
	if err != nil {
		r.logger.Debug().Err(err).Str("thread_id", thread.ID).Str("local_id", pending.LocalID).Msg("message send failed")
		if r.Dispatch(store.Action{Type: opMessageSend + store.SuffixError, Seq: seq, Payload: sendFailure{localID: pending.LocalID}, Err: err}) && r.notifier != nil {
			r.notifier.Notify(ctx, err)
		}
		return models.Message{}, err
	}

	observability.DiscussionMessages().WithLabelValues(message.Type).Inc()
	r.Dispatch(store.Action{Type: opMessageSend + store.SuffixSuccess, Seq: seq, Payload: sendResult{localID: pending.LocalID, message: message}})
	return message, nil
}

// Edit replaces a message's content after the server accepts the change.
func (r *Room) Edit(ctx context.Context, messageID, content string) (models.Message, error) {
	if err := service.ValidateMessageContent(content); err != nil {
		return models.Message{}, err
	}
	return store.Run(ctx, r.Store, r.notifier, opMessageEdit, "", func(ctx context.Context) (models.Message, error) {
		return r.messages.Update(ctx, messageID, dto.MessageUpdateRequest{Content: content})
	})
}

// Delete removes a message after the server confirms the deletion.
func (r *Room) Delete(ctx context.Context, messageID string) error {
	_, err := store.Run(ctx, r.Store, r.notifier, opMessageDelete, "", func(ctx context.Context) (string, error) {
		return messageID, r.messages.Delete(ctx, messageID)
	})
	return err
}

// DiscardFailed drops a message whose send failed. It reports whether one was removed.
func (r *Room) DiscardFailed(localID string) bool {
	for _, message := range r.State().Messages {
		if message.LocalID == localID && message.Status == StatusFailed {
			return r.Dispatch(store.Action{Type: opMessageRetire, Payload: localID})
		}
	}
	return false
}

// Messages returns the message list of the thread the gate has open. It is
// empty when the gate has moved to another thread since the last Load or Send.
func (r *Room) Messages() []RoomMessage {
	state := r.State()
	thread := r.gate.State().Thread
	if thread == nil || thread.ID != state.ThreadID {
		return nil
	}
	return state.Messages
}

func reduceRoom(state RoomState, action store.Action) RoomState {
	switch action.Type {
	case opMessagesFetch + store.SuffixStart:
		threadID := action.Payload.(string)
		if state.ThreadID != threadID {
			return RoomState{ThreadID: threadID}
		}
	case opMessagesFetch + store.SuffixSuccess:
		result := action.Payload.(fetchResult)
		if result.threadID != state.ThreadID {
			return state
		}
		next := make([]RoomMessage, 0, len(result.messages)+len(state.Messages))
		for _, message := range result.messages {
			next = append(next, RoomMessage{Message: message, Status: StatusConfirmed})
		}
		for _, message := range state.Messages {
			if message.Status != StatusConfirmed {
				next = append(next, message)
			}
		}
		state.Messages = arrange(next)
	case opMessageSend + store.SuffixStart:
		pending := action.Payload.(RoomMessage)
		if state.ThreadID != pending.ThreadID {
			state = RoomState{ThreadID: pending.ThreadID}
		}
		state.Messages = arrange(append(cloneMessages(state.Messages), pending))
	case opMessageSend + store.SuffixSuccess:
		result := action.Payload.(sendResult)
		next := make([]RoomMessage, 0, len(state.Messages))
		for _, message := range state.Messages {
			if message.LocalID == result.localID || (message.Status == StatusConfirmed && message.ID == result.message.ID) {
				continue
			}
			next = append(next, message)
		}
		next = append(next, RoomMessage{Message: result.message, LocalID: result.localID, Status: StatusConfirmed})
		state.Messages = arrange(next)
	case opMessageSend + store.SuffixError:
		failure := action.Payload.(sendFailure)
		next := cloneMessages(state.Messages)
		for i := range next {
			if next[i].LocalID == failure.localID {
				next[i].Status = StatusFailed
			}
		}
		state.Messages = next
	case opMessageEdit + store.SuffixSuccess:
		edited := action.Payload.(models.Message)
		next := cloneMessages(state.Messages)
		for i := range next {
			if next[i].Status == StatusConfirmed && next[i].ID == edited.ID {
				next[i].Message = edited
			}
		}
		state.Messages = arrange(next)
	case opMessageDelete + store.SuffixSuccess:
		id := action.Payload.(string)
		state.Messages = filterMessages(state.Messages, func(m RoomMessage) bool {
			return m.Status != StatusConfirmed || m.ID != id
		})
	case opMessageRetire:
		localID := action.Payload.(string)
		state.Messages = filterMessages(state.Messages, func(m RoomMessage) bool {
			return m.LocalID != localID || m.Status != StatusFailed
		})
	}
	return state
}

// arrange orders confirmed messages by (created_at, id) and keeps pending and
// failed messages after them in send order.
func arrange(messages []RoomMessage) []RoomMessage {
	confirmed := make([]RoomMessage, 0, len(messages))
	local := make([]RoomMessage, 0)
	for _, message := range messages {
		if message.Status == StatusConfirmed {
			confirmed = append(confirmed, message)
		} else {
			local = append(local, message)
		}
	}
	sort.SliceStable(confirmed, func(i, j int) bool {
		a, b := confirmed[i], confirmed[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return append(confirmed, local...)
}

func cloneMessages(messages []RoomMessage) []RoomMessage {
	return append([]RoomMessage(nil), messages...)
}

func filterMessages(messages []RoomMessage, keep func(RoomMessage) bool) []RoomMessage {
	out := make([]RoomMessage, 0, len(messages))
	for _, message := range messages {
		if keep(message) {
			out = append(out, message)
		}
	}
	return out
}

// Package discussion implements the per-event discussion: the participation
// gate that decides who may read and post, and the message room.
package discussion

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
	"github.com/noah-isme/kultura-go/internal/store"
)

var (
	// ErrNoThread means the event has no discussion thread yet.
	ErrNoThread = errors.New("discussion: no thread for event")
	// ErrNotParticipant means the user has not joined the thread.
	ErrNotParticipant = errors.New("discussion: not a participant")
)

// Participation is the user's standing in an event's discussion.
type Participation string

const (
	NoThread       Participation = "no_thread"
	NotParticipant Participation = "not_participant"
	Participant    Participation = "participant"
)

const (
	opThreadFetch = "THREAD_FETCH"
	opThreadStart = "THREAD_START"
	opThreadJoin  = "THREAD_JOIN"
	slotThread    = "thread"
)

// GateState is the thread on screen and the user's participation in it.
type GateState struct {
	Thread        *models.Thread
	Participation Participation
}

type gateResult struct {
	thread *models.Thread
	userID string
}

// Gate tracks thread participation for the event on screen.
type Gate struct {
	*store.Store[GateState]
	threads  service.ThreadService
	notifier store.Notifier
	logger   zerolog.Logger
}

// NewGate builds the participation gate.
func NewGate(threads service.ThreadService, notifier store.Notifier, logger zerolog.Logger) *Gate {
	return &Gate{
		Store:    store.New("thread", initialGate, reduceGate, logger),
		threads:  threads,
		notifier: notifier,
		logger:   logger.With().Str("component", "discussion_gate").Logger(),
	}
}

func initialGate() GateState {
	return GateState{Participation: NoThread}
}

// CanInteract reports whether userID created or joined thread.
func CanInteract(thread models.Thread, userID string) bool {
	if userID == "" {
		return false
	}
	if thread.CreatorID == userID || thread.Creator.ID == userID {
		return true
	}
	return thread.HasParticipant(userID)
}

// FetchThreadByEventID loads the event's thread, or records that there is none.
func (g *Gate) FetchThreadByEventID(ctx context.Context, eventID, userID string) (GateState, error) {
	_, err := store.Run(ctx, g.Store, g.notifier, opThreadFetch, slotThread, func(ctx context.Context) (gateResult, error) {
		return g.load(ctx, eventID, userID)
	})
	return g.State(), err
}

// StartDiscussion creates the event's thread. The creator participates implicitly.
func (g *Gate) StartDiscussion(ctx context.Context, eventID, userID string) (models.Thread, error) {
	result, err := store.Run(ctx, g.Store, g.notifier, opThreadStart, slotThread, func(ctx context.Context) (gateResult, error) {
		thread, err := g.threads.Create(ctx, dto.ThreadCreateRequest{EventID: eventID})
		if err != nil {
			return gateResult{}, err
		}
		if thread.CreatorID == "" {
			thread.CreatorID = userID
		}
		return gateResult{thread: &thread, userID: userID}, nil
	})
	if err != nil {
		return models.Thread{}, err
	}
	return *result.thread, nil
}

// JoinEventThread joins the thread and reloads it, because the join response
// does not carry the updated participant list.
func (g *Gate) JoinEventThread(ctx context.Context, threadID, eventID, userID string) (GateState, error) {
	_, err := store.Run(ctx, g.Store, g.notifier, opThreadJoin, slotThread, func(ctx context.Context) (gateResult, error) {
		if _, err := g.threads.Join(ctx, dto.ThreadJoinRequest{ThreadID: threadID, EventID: eventID}); err != nil {
			return gateResult{}, err
		}
		result, err := g.load(ctx, eventID, userID)
		if err != nil {
			return gateResult{}, err
		}
		if result.thread == nil {
			return gateResult{}, &apperror.Error{Kind: apperror.KindNotFound, Message: "Thread not found", Err: ErrNoThread}
		}
		return result, nil
	})
	if err == nil {
		g.logger.Info().Str("thread_id", threadID).Str("user_id", userID).Msg("joined discussion")
	}
	return g.State(), err
}

// CanAccessMessages reports whether the user participates in the thread of eventID.
// A thread left over from another event never grants access.
func (g *Gate) CanAccessMessages(eventID string) bool {
	state := g.State()
	return state.Participation == Participant && state.Thread != nil && state.Thread.EventID == eventID
}

// Access returns the thread for eventID when the user may read and post in it.
func (g *Gate) Access(eventID string) (models.Thread, error) {
	state := g.State()
	if state.Thread == nil || state.Thread.EventID != eventID {
		return models.Thread{}, &apperror.Error{Kind: apperror.KindValidation, Message: "This event has no discussion yet", Err: ErrNoThread}
	}
	if !g.CanAccessMessages(eventID) {
		return models.Thread{}, &apperror.Error{Kind: apperror.KindValidation, Message: "Join the discussion to see messages", Err: ErrNotParticipant}
	}
	return *state.Thread, nil
}

func (g *Gate) load(ctx context.Context, eventID, userID string) (gateResult, error) {
	thread, found, err := g.threads.GetByEventID(ctx, eventID)
	if err != nil {
		return gateResult{}, err
	}
	if !found {
		return gateResult{userID: userID}, nil
	}
	return gateResult{thread: &thread, userID: userID}, nil
}

func reduceGate(state GateState, action store.Action) GateState {
	switch action.Type {
	case opThreadFetch + store.SuffixSuccess, opThreadStart + store.SuffixSuccess, opThreadJoin + store.SuffixSuccess:
		result := action.Payload.(gateResult)
		if result.thread == nil {
			return initialGate()
		}
		participation := NotParticipant
		if CanInteract(*result.thread, result.userID) {
			participation = Participant
		}
		return GateState{Thread: result.thread, Participation: participation}
	}
	return state
}

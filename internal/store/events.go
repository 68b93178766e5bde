package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

const (
	opEventsFetch   = "EVENTS_FETCH"
	opTrendingFetch = "TRENDING_FETCH"
	opEventFetch    = "EVENT_FETCH"
	opEventCreate   = "EVENT_CREATE"
	opEventUpdate   = "EVENT_UPDATE"
	opEventDelete   = "EVENT_DELETE"

	slotEvents   = "events"
	slotTrending = "trending"
	slotCurrent  = "current"
)

// EventState holds the listing, the trending row and the event being viewed.
type EventState struct {
	Events     []models.Event
	Trending   []models.Event
	Current    *models.Event
	Pagination models.Pagination
	Query      dto.EventQuery
}

type eventsPage struct {
	page   service.EventPage
	query  dto.EventQuery
	append bool
}

// EventStore tracks event browsing.
type EventStore struct {
	*Store[EventState]
	events   service.EventService
	notifier Notifier
}

// NewEventStore builds the events container.
func NewEventStore(events service.EventService, notifier Notifier, logger zerolog.Logger) *EventStore {
	return &EventStore{
		Store:    New("events", func() EventState { return EventState{} }, reduceEvents, logger),
		events:   events,
		notifier: notifier,
	}
}

// FetchEvents loads the first page for query and replaces the listing.
func (s *EventStore) FetchEvents(ctx context.Context, query dto.EventQuery) ([]models.Event, error) {
	query.Page = 1
	result, err := Run(ctx, s.Store, s.notifier, opEventsFetch, slotEvents, func(ctx context.Context) (eventsPage, error) {
		page, err := s.events.List(ctx, query)
		return eventsPage{page: page, query: query}, err
	})
	return result.page.Events, err
}

// LoadMore appends the next page of the current query. It is a no-op on the
// last page and while a listing request is still in flight, so a newer
// FetchEvents is never overridden by a page of the previous query.
func (s *EventStore) LoadMore(ctx context.Context) ([]models.Event, error) {
	seq, state, ok := s.TryBegin(opEventsFetch, slotEvents, func(state EventState) bool {
		return state.Pagination.HasNextPage
	})
	if !ok {
		return nil, nil
	}
	query := state.Query
	query.Page = state.Pagination.Page + 1

	page, err := s.events.List(ctx, query)
	if err != nil {
		Fail(ctx, s.Store, s.notifier, opEventsFetch, slotEvents, seq, err)
		return nil, err
	}
	s.Dispatch(Action{Type: opEventsFetch + SuffixSuccess, Slot: slotEvents, Seq: seq, Payload: eventsPage{page: page, query: query, append: true}})
	return page.Events, nil
}

// FetchTrending loads the trending row.
func (s *EventStore) FetchTrending(ctx context.Context) ([]models.Event, error) {
	return Run(ctx, s.Store, s.notifier, opTrendingFetch, slotTrending, s.events.Trending)
}

// FetchEvent loads one event into Current.
func (s *EventStore) FetchEvent(ctx context.Context, id string) (models.Event, error) {
	return Run(ctx, s.Store, s.notifier, opEventFetch, slotCurrent, func(ctx context.Context) (models.Event, error) {
		return s.events.Get(ctx, id)
	})
}

// CreateEvent creates an event and puts it at the head of the listing.
func (s *EventStore) CreateEvent(ctx context.Context, payload dto.EventCreateRequest) (models.Event, error) {
	return Run(ctx, s.Store, s.notifier, opEventCreate, "", func(ctx context.Context) (models.Event, error) {
		return s.events.Create(ctx, payload)
	})
}

// UpdateEvent saves changes once the server confirms them.
func (s *EventStore) UpdateEvent(ctx context.Context, id string, payload dto.EventUpdateRequest) (models.Event, error) {
	return Run(ctx, s.Store, s.notifier, opEventUpdate, "", func(ctx context.Context) (models.Event, error) {
		return s.events.Update(ctx, id, payload)
	})
}

// DeleteEvent removes an event once the server confirms it.
func (s *EventStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := Run(ctx, s.Store, s.notifier, opEventDelete, "", func(ctx context.Context) (string, error) {
		return id, s.events.Delete(ctx, id)
	})
	return err
}

func reduceEvents(state EventState, action Action) EventState {
	switch action.Type {
	case opEventsFetch + SuffixSuccess:
		result := action.Payload.(eventsPage)
		if result.append {
			state.Events = append(append([]models.Event(nil), state.Events...), result.page.Events...)
		} else {
			state.Events = result.page.Events
		}
		state.Pagination = result.page.Pagination
		state.Query = result.query
	case opTrendingFetch + SuffixSuccess:
		state.Trending = action.Payload.([]models.Event)
	case opEventFetch + SuffixSuccess:
		event := action.Payload.(models.Event)
		state.Current = &event
	case opEventCreate + SuffixSuccess:
		event := action.Payload.(models.Event)
		state.Events = append([]models.Event{event}, state.Events...)
		state.Current = &event
	case opEventUpdate + SuffixSuccess:
		event := action.Payload.(models.Event)
		state.Events = replaceEvent(state.Events, event)
		state.Trending = replaceEvent(state.Trending, event)
		if state.Current != nil && state.Current.ID == event.ID {
			state.Current = &event
		}
	case opEventDelete + SuffixSuccess:
		id := action.Payload.(string)
		state.Events = removeEvent(state.Events, id)
		state.Trending = removeEvent(state.Trending, id)
		if state.Current != nil && state.Current.ID == id {
			state.Current = nil
		}
	}
	return state
}

func replaceEvent(events []models.Event, event models.Event) []models.Event {
	out := make([]models.Event, len(events))
	for i, existing := range events {
		if existing.ID == event.ID {
			existing = event
		}
		out[i] = existing
	}
	return out
}

func removeEvent(events []models.Event, id string) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, existing := range events {
		if existing.ID != id {
			out = append(out, existing)
		}
	}
	return out
}

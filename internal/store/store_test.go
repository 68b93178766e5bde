package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

type counterState struct {
	Value int
}

func newCounter() *Store[counterState] {
	return New("counter", func() counterState { return counterState{} }, func(state counterState, action Action) counterState {
		if action.Type == "SET"+SuffixSuccess {
			state.Value = action.Payload.(int)
		}
		return state
	}, zerolog.Nop())
}

func TestStoreDropsSupersededResponse(t *testing.T) {
	st := newCounter()

	first := st.Begin("SET", "value")
	second := st.Begin("SET", "value")

	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "value", Seq: second, Payload: 2}))
	require.False(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "value", Seq: first, Payload: 1}))
	require.Equal(t, 2, st.State().Value)
	require.False(t, st.Status().IsLoading)
}

func TestStoreSlotsAreIndependent(t *testing.T) {
	st := newCounter()

	a := st.Begin("SET", "a")
	b := st.Begin("SET", "b")
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "a", Seq: a, Payload: 1}))
	require.True(t, st.Status().IsLoading)
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "b", Seq: b, Payload: 2}))
	require.False(t, st.Status().IsLoading)

	x := st.Begin("SET", "")
	y := st.Begin("SET", "")
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Seq: y, Payload: 4}))
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Seq: x, Payload: 3}))
	require.Equal(t, 3, st.State().Value)
}

func TestStoreResetIsIdempotentAndDropsLateResponses(t *testing.T) {
	st := newCounter()
	seq := st.Begin("SET", "value")
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixError, Slot: "value", Seq: seq, Err: apperror.New(apperror.KindAPI, "boom")}))
	require.Equal(t, "boom", st.Status().Error)

	late := st.Begin("SET", "value")
	st.Reset()
	first := st.Snapshot()
	st.Reset()
	require.Equal(t, first, st.Snapshot())
	require.Equal(t, Snapshot[counterState]{}, first)

	require.False(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "value", Seq: late, Payload: 9}))
	require.Zero(t, st.State().Value)

	fresh := st.Begin("SET", "value")
	require.True(t, st.Dispatch(Action{Type: "SET" + SuffixSuccess, Slot: "value", Seq: fresh, Payload: 5}))
	require.Equal(t, 5, st.State().Value)
}

func TestStoreClearErrorAndSubscribe(t *testing.T) {
	st := newCounter()
	var seen []Snapshot[counterState]
	unsubscribe := st.Subscribe(func(s Snapshot[counterState]) { seen = append(seen, s) })

	seq := st.Begin("SET", "value")
	st.Dispatch(Action{Type: "SET" + SuffixError, Slot: "value", Seq: seq, Err: errors.New("raw")})
	require.Equal(t, "raw", st.Status().Error)
	st.ClearError()
	require.Empty(t, st.Status().Error)
	require.Len(t, seen, 3)
	require.True(t, seen[0].Status.IsLoading)

	unsubscribe()
	st.Reset()
	require.Len(t, seen, 3)
}

type gatedSearch struct {
	mu      sync.Mutex
	release map[string]chan struct{}
}

func (g *gatedSearch) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.release == nil {
		g.release = map[string]chan struct{}{}
	}
	if _, ok := g.release[query]; !ok {
		g.release[query] = make(chan struct{})
	}
	return g.release[query]
}

func (g *gatedSearch) Search(ctx context.Context, query dto.SearchQuery) (dto.SearchResult, error) {
	<-g.gate(query.Query)
	return dto.SearchResult{Events: []models.Event{{ID: query.Query}}}, nil
}

func TestSearchStoreLatestQueryWins(t *testing.T) {
	search := &gatedSearch{}
	st := NewSearchStore(search, nil, zerolog.Nop())
	ctx := context.Background()

	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = st.Search(ctx, dto.SearchQuery{Query: "a"})
	}()
	require.Eventually(t, func() bool { return st.State().Query.Query == "a" }, time.Second, time.Millisecond)

	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		_, _ = st.Search(ctx, dto.SearchQuery{Query: "b"})
	}()
	require.Eventually(t, func() bool { return st.State().Query.Query == "b" }, time.Second, time.Millisecond)

	close(search.gate("b"))
	<-doneB
	close(search.gate("a"))
	<-doneA

	state := st.State()
	require.Equal(t, "b", state.Query.Query)
	require.Equal(t, "b", state.Results.Events[0].ID)
	require.False(t, st.Status().IsLoading)
}

type fakeUsers struct {
	service.UserService
	profile   models.UserProfile
	avatarErr error
}

func (f *fakeUsers) MyProfile(context.Context) (models.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, _ string, avatarURL string) (models.UserProfile, error) {
	if f.avatarErr != nil {
		return models.UserProfile{}, f.avatarErr
	}
	updated := f.profile
	updated.AvatarURL = &avatarURL
	return updated, nil
}

func TestProfileStoreAvatarRevertsOnFailure(t *testing.T) {
	ctx := context.Background()
	old := "https://cdn.example.com/old.png"
	users := &fakeUsers{profile: models.UserProfile{ID: "p1", AvatarURL: &old}, avatarErr: apperror.New(apperror.KindAPI, "upload rejected")}

	var notified []error
	notifier := NotifierFunc(func(_ context.Context, err error) { notified = append(notified, err) })
	st := NewProfileStore(users, notifier, zerolog.Nop())

	var optimistic string
	st.Subscribe(func(s Snapshot[ProfileState]) {
		if s.State.Profile != nil && s.State.Profile.AvatarURL != nil && optimistic == "" && *s.State.Profile.AvatarURL != old {
			optimistic = *s.State.Profile.AvatarURL
		}
	})

	_, err := st.FetchMyProfile(ctx)
	require.NoError(t, err)

	_, err = st.UpdateAvatar(ctx, "https://cdn.example.com/new.png")
	require.Error(t, err)
	require.Equal(t, "https://cdn.example.com/new.png", optimistic)
	require.Equal(t, old, *st.State().Profile.AvatarURL)
	require.Equal(t, "upload rejected", st.Status().Error)
	require.Len(t, notified, 1)

	users.avatarErr = nil
	profile, err := st.UpdateAvatar(ctx, "https://cdn.example.com/new.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/new.png", *profile.AvatarURL)
	require.Equal(t, "https://cdn.example.com/new.png", *st.State().Profile.AvatarURL)
}

func TestProfileStoreRequiresLoadedProfile(t *testing.T) {
	st := NewProfileStore(&fakeUsers{}, nil, zerolog.Nop())
	_, err := st.UpdateAvatar(context.Background(), "https://cdn.example.com/a.png")
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
}

type pagedEvents struct {
	service.EventService
	total int
}

func (p *pagedEvents) List(_ context.Context, query dto.EventQuery) (service.EventPage, error) {
	perPage := 2
	start := (query.Page - 1) * perPage
	var events []models.Event
	for i := start; i < start+perPage && i < p.total; i++ {
		events = append(events, models.Event{ID: string(rune('a' + i))})
	}
	return service.EventPage{Events: events, Pagination: models.NewPagination(int64(p.total), query.Page, perPage)}, nil
}

func TestEventStoreLoadMoreAppends(t *testing.T) {
	ctx := context.Background()
	st := NewEventStore(&pagedEvents{total: 3}, nil, zerolog.Nop())

	_, err := st.FetchEvents(ctx, dto.EventQuery{Page: 7})
	require.NoError(t, err)
	require.Len(t, st.State().Events, 2)
	require.True(t, st.State().Pagination.HasNextPage)

	_, err = st.LoadMore(ctx)
	require.NoError(t, err)
	state := st.State()
	require.Len(t, state.Events, 3)
	require.Equal(t, "c", state.Events[2].ID)
	require.False(t, state.Pagination.HasNextPage)

	more, err := st.LoadMore(ctx)
	require.NoError(t, err)
	require.Nil(t, more)
	require.Len(t, st.State().Events, 3)
}

func TestListStoreFetch(t *testing.T) {
	loader := func(_ context.Context, provinceID string) ([]models.City, error) {
		if provinceID == "" {
			return nil, apperror.New(apperror.KindNetwork, "Network error")
		}
		return []models.City{{ID: "c1", ProvinceID: provinceID}}, nil
	}
	st := NewListStore[models.City]("cities", loader, nil, zerolog.Nop())

	cities, err := st.Fetch(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, cities, 1)
	require.Equal(t, "p1", st.State().Filter)

	_, err = st.Fetch(context.Background(), "")
	require.Error(t, err)
	require.Equal(t, "Network error", st.Status().Error)
	require.Len(t, st.Items(), 1)
}

type heldAi struct {
	release chan struct{}
}

func (h *heldAi) StartSession(_ context.Context, eventID string) (models.AiSession, error) {
	return models.AiSession{ID: "s-" + eventID, EventID: eventID}, nil
}

func (h *heldAi) SendMessage(_ context.Context, sessionID, content string) (models.AiMessage, error) {
	<-h.release
	return models.AiMessage{ID: "reply-" + sessionID, SessionID: sessionID, Role: models.AiRoleAssistant, Content: "re: " + content}, nil
}

func TestAiStoreDropsReplyFromPreviousSession(t *testing.T) {
	ai := &heldAi{release: make(chan struct{})}
	st := NewAiStore(ai, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := st.StartSession(ctx, "A")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = st.Ask(ctx, "kapan mulai?")
	}()
	require.Eventually(t, func() bool { return len(st.State().Conversation) == 1 }, time.Second, time.Millisecond)

	_, err = st.StartSession(ctx, "B")
	require.NoError(t, err)
	close(ai.release)
	<-done

	state := st.State()
	require.Equal(t, "s-B", state.Session.ID)
	require.Empty(t, state.Conversation)

	reply, err := st.Ask(ctx, "di mana?")
	require.NoError(t, err)
	require.Equal(t, "s-B", reply.SessionID)
	require.Len(t, st.State().Conversation, 2)
	for _, turn := range st.State().Conversation {
		require.Equal(t, "s-B", turn.SessionID)
	}
}

type filteredEvents struct {
	service.EventService
	release chan struct{}
	calls   []dto.EventQuery
	mu      sync.Mutex
}

func (f *filteredEvents) List(_ context.Context, query dto.EventQuery) (service.EventPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()

	prefix := "all"
	if query.CityID != "" {
		<-f.release
		prefix = query.CityID
	}
	events := []models.Event{{ID: fmt.Sprintf("%s-%d", prefix, query.Page)}}
	return service.EventPage{Events: events, Pagination: models.NewPagination(10, query.Page, 1)}, nil
}

func TestEventStoreLoadMoreYieldsToNewerFilter(t *testing.T) {
	events := &filteredEvents{release: make(chan struct{})}
	st := NewEventStore(events, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := st.FetchEvents(ctx, dto.EventQuery{})
	require.NoError(t, err)
	require.True(t, st.State().Pagination.HasNextPage)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = st.FetchEvents(ctx, dto.EventQuery{CityID: "yogya"})
	}()
	require.Eventually(t, func() bool { return st.Status().IsLoading }, time.Second, time.Millisecond)

	more, err := st.LoadMore(ctx)
	require.NoError(t, err)
	require.Nil(t, more)

	close(events.release)
	<-done

	state := st.State()
	require.Equal(t, "yogya", state.Query.CityID)
	require.Equal(t, 1, state.Query.Page)
	require.Len(t, state.Events, 1)
	require.Equal(t, "yogya-1", state.Events[0].ID)
	require.Len(t, events.calls, 2)

	more, err = st.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, more, 1)
	require.Equal(t, "yogya-2", more[0].ID)
	require.Equal(t, []string{"yogya-1", "yogya-2"}, []string{st.State().Events[0].ID, st.State().Events[1].ID})
}

func TestProfileStoreAvatarSurvivesConcurrentReset(t *testing.T) {
	ctx := context.Background()
	st := NewProfileStore(&fakeUsers{profile: models.UserProfile{ID: "p1"}}, nil, zerolog.Nop())

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				st.Reset()
				_, _ = st.FetchMyProfile(ctx)
			}
		}
	}()

	for i := 0; i < 500; i++ {
		_, err := st.UpdateAvatar(ctx, "https://cdn.example.com/a.png")
		if err != nil {
			require.True(t, apperror.IsKind(err, apperror.KindValidation))
		}
	}
	close(stop)
	wg.Wait()
}

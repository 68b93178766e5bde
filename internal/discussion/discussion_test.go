package discussion

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kultura-go/internal/apiclient"
	"github.com/noah-isme/kultura-go/internal/apiclient/apiclienttest"
	"github.com/noah-isme/kultura-go/internal/apperror"
	"github.com/noah-isme/kultura-go/internal/dto"
	"github.com/noah-isme/kultura-go/internal/models"
	"github.com/noah-isme/kultura-go/internal/service"
)

func newFixture(stub *apiclienttest.Stub) (*Gate, *Room) {
	validate := service.NewValidator()
	gate := NewGate(service.NewThreadService(stub, validate, zerolog.Nop()), nil, zerolog.Nop())
	room := NewRoom(gate, service.NewMessageService(stub, validate, zerolog.Nop()), nil, zerolog.Nop())
	return gate, room
}

func TestCanInteract(t *testing.T) {
	thread := models.Thread{
		CreatorID:    "owner",
		Participants: []models.DiscussionParticipant{{UserID: "u2"}},
	}
	require.True(t, CanInteract(thread, "owner"))
	require.True(t, CanInteract(thread, "u2"))
	require.False(t, CanInteract(thread, "u3"))
	require.False(t, CanInteract(thread, ""))

	thread.CreatorID = ""
	thread.Creator = models.User{ID: "owner"}
	require.True(t, CanInteract(thread, "owner"))
}

func TestGateNoThread(t *testing.T) {
	stub := apiclienttest.New().Reply(http.MethodGet, "/threads/event/e1", apiclienttest.Fail(http.StatusNotFound, "NOT_FOUND", "Thread not found"))
	gate, room := newFixture(stub)

	state, err := gate.FetchThreadByEventID(context.Background(), "e1", "u1")
	require.NoError(t, err)
	require.Equal(t, NoThread, state.Participation)
	require.Nil(t, state.Thread)
	require.False(t, gate.CanAccessMessages("e1"))

	_, err = room.Send(context.Background(), "e1", "hello")
	require.ErrorIs(t, err, ErrNoThread)
	require.Zero(t, stub.CallCount(http.MethodPost, "/messages"))
}

func TestGateJoinRefetchesParticipation(t *testing.T) {
	ctx := context.Background()
	thread := models.Thread{ID: "t1", EventID: "e1", CreatorID: "owner"}
	stub := apiclienttest.New().Reply(http.MethodGet, "/threads/event/e1", apiclienttest.OK(thread))
	gate, room := newFixture(stub)

	state, err := gate.FetchThreadByEventID(ctx, "e1", "u1")
	require.NoError(t, err)
	require.Equal(t, NotParticipant, state.Participation)

	_, err = room.Load(ctx, "e1")
	require.ErrorIs(t, err, ErrNotParticipant)
	require.Zero(t, stub.CallCount(http.MethodGet, "/messages/thread/t1"))

	joined := thread
	joined.Participants = []models.DiscussionParticipant{{ThreadID: "t1", UserID: "u1"}}
	stub.Reply(http.MethodPost, "/threads/t1/join", apiclienttest.OK(models.DiscussionParticipant{ThreadID: "t1", UserID: "u1"}))
	stub.Reply(http.MethodGet, "/threads/event/e1", apiclienttest.OK(joined))

	state, err = gate.JoinEventThread(ctx, "t1", "e1", "u1")
	require.NoError(t, err)
	require.Equal(t, Participant, state.Participation)
	require.True(t, gate.CanAccessMessages("e1"))
	require.False(t, gate.CanAccessMessages("e2"))
	require.Equal(t, 2, stub.CallCount(http.MethodGet, "/threads/event/e1"))
}

func TestGateFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	thread := models.Thread{ID: "t1", EventID: "e1", CreatorID: "owner"}
	stub := apiclienttest.New().Reply(http.MethodGet, "/threads/event/e1", apiclienttest.OK(thread))
	var notified []error
	validate := service.NewValidator()
	gate := NewGate(service.NewThreadService(stub, validate, zerolog.Nop()), notifierFunc(func(err error) { notified = append(notified, err) }), zerolog.Nop())

	_, err := gate.FetchThreadByEventID(ctx, "e1", "u1")
	require.NoError(t, err)

	stub.Reply(http.MethodPost, "/threads/t1/join", apiclienttest.Fail(http.StatusForbidden, "FORBIDDEN", "Thread is closed"))
	state, err := gate.JoinEventThread(ctx, "t1", "e1", "u1")
	require.Error(t, err)
	require.Equal(t, NotParticipant, state.Participation)
	require.Equal(t, "t1", state.Thread.ID)
	require.Equal(t, "Thread is closed", gate.Status().Error)
	require.Len(t, notified, 1)
}

func TestStartDiscussionMakesCreatorParticipant(t *testing.T) {
	stub := apiclienttest.New().Reply(http.MethodPost, "/threads", apiclienttest.OK(models.Thread{ID: "t9", EventID: "e1"}))
	gate, _ := newFixture(stub)

	thread, err := gate.StartDiscussion(context.Background(), "e1", "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", thread.CreatorID)
	require.True(t, gate.CanAccessMessages("e1"))
}

func participantFixture(t *testing.T) (*apiclienttest.Stub, *Room) {
	t.Helper()
	thread := models.Thread{ID: "t1", EventID: "e1", CreatorID: "u1"}
	stub := apiclienttest.New().Reply(http.MethodGet, "/threads/event/e1", apiclienttest.OK(thread))
	gate, room := newFixture(stub)
	_, err := gate.FetchThreadByEventID(context.Background(), "e1", "u1")
	require.NoError(t, err)
	return stub, room
}

func TestRoomSendLengthBoundary(t *testing.T) {
	ctx := context.Background()
	stub, room := participantFixture(t)
	stub.Handle(http.MethodPost, "/messages", func(_ context.Context, call apiclienttest.Call) apiclient.Envelope {
		payload := call.Body.(dto.MessageSendRequest)
		return apiclienttest.OK(models.Message{ID: "m1", ThreadID: payload.ThreadID, Content: payload.Content, Type: payload.Type, CreatedAt: time.Now()})
	})

	_, err := room.Send(ctx, "e1", strings.Repeat("x", 1001))
	require.True(t, apperror.IsKind(err, apperror.KindValidation))
	require.Zero(t, stub.CallCount(http.MethodPost, "/messages"))
	require.Empty(t, room.Messages())

	content := strings.Repeat("x", 1000)
	message, err := room.Send(ctx, "e1", content)
	require.NoError(t, err)
	require.Equal(t, content, message.Content)
	require.Equal(t, 1, stub.CallCount(http.MethodPost, "/messages"))

	messages := room.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, StatusConfirmed, messages[0].Status)
	require.Equal(t, "m1", messages[0].ID)
}

func TestRoomSendShowsPendingThenFailed(t *testing.T) {
	ctx := context.Background()
	stub, room := participantFixture(t)

	var pendingSeen bool
	stub.Handle(http.MethodPost, "/messages", func(context.Context, apiclienttest.Call) apiclient.Envelope {
		messages := room.Messages()
		pendingSeen = len(messages) == 1 && messages[0].Status == StatusPending
		return apiclienttest.Fail(0, apiclient.CodeNetwork, apiclient.CodeNetwork)
	})

	_, err := room.Send(ctx, "e1", "hello")
	require.True(t, apperror.IsKind(err, apperror.KindNetwork))
	require.True(t, pendingSeen)

	messages := room.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, StatusFailed, messages[0].Status)
	require.Equal(t, "hello", messages[0].Content)

	require.False(t, room.DiscardFailed("unknown"))
	require.True(t, room.DiscardFailed(messages[0].LocalID))
	require.Empty(t, room.Messages())
}

func TestRoomLoadOrdersAndKeepsPending(t *testing.T) {
	ctx := context.Background()
	stub, room := participantFixture(t)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	stub.Reply(http.MethodGet, "/messages/thread/t1", apiclienttest.OK([]models.Message{
		{ID: "m3", ThreadID: "t1", CreatedAt: base.Add(time.Minute)},
		{ID: "m2", ThreadID: "t1", CreatedAt: base},
		{ID: "m1", ThreadID: "t1", CreatedAt: base},
	}))
	stub.Reply(http.MethodPost, "/messages", apiclienttest.Fail(http.StatusInternalServerError, "INTERNAL", "boom"))

	_, err := room.Send(ctx, "e1", "draft")
	require.Error(t, err)

	messages, err := room.Load(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, messages, 4)
	require.Equal(t, []string{"m1", "m2", "m3"}, []string{messages[0].ID, messages[1].ID, messages[2].ID})
	require.Equal(t, StatusFailed, messages[3].Status)
}

func TestRoomEditAndDeleteArePessimistic(t *testing.T) {
	ctx := context.Background()
	stub, room := participantFixture(t)
	stub.Reply(http.MethodGet, "/messages/thread/t1", apiclienttest.OK([]models.Message{{ID: "m1", ThreadID: "t1", Content: "old"}}))
	_, err := room.Load(ctx, "e1")
	require.NoError(t, err)

	stub.Reply(http.MethodPut, "/messages/m1", apiclienttest.Fail(http.StatusForbidden, "FORBIDDEN", "not yours"))
	_, err = room.Edit(ctx, "m1", "new")
	require.Error(t, err)
	require.Equal(t, "old", room.Messages()[0].Content)

	stub.Reply(http.MethodPut, "/messages/m1", apiclienttest.OK(models.Message{ID: "m1", ThreadID: "t1", Content: "new"}))
	_, err = room.Edit(ctx, "m1", "new")
	require.NoError(t, err)
	require.Equal(t, "new", room.Messages()[0].Content)

	stub.Reply(http.MethodDelete, "/messages/m1", apiclienttest.Fail(http.StatusInternalServerError, "", "boom"))
	require.Error(t, room.Delete(ctx, "m1"))
	require.Len(t, room.Messages(), 1)

	stub.Reply(http.MethodDelete, "/messages/m1", apiclienttest.OK(map[string]string{"id": "m1"}))
	require.NoError(t, room.Delete(ctx, "m1"))
	require.Empty(t, room.Messages())
}

func TestRoomResetDropsLateSend(t *testing.T) {
	ctx := context.Background()
	stub, room := participantFixture(t)
	stub.Handle(http.MethodPost, "/messages", func(context.Context, apiclienttest.Call) apiclient.Envelope {
		room.Reset()
		return apiclienttest.OK(models.Message{ID: "m1", ThreadID: "t1", Content: "late"})
	})

	_, err := room.Send(ctx, "e1", "late")
	require.NoError(t, err)
	require.Empty(t, room.Messages())
}

type notifierFunc func(err error)

func (f notifierFunc) Notify(_ context.Context, err error) { f(err) }

func TestRoomHidesMessagesOfPreviousThread(t *testing.T) {
	ctx := context.Background()
	stub := apiclienttest.New().
		Reply(http.MethodGet, "/threads/event/e1", apiclienttest.OK(models.Thread{ID: "t1", EventID: "e1", CreatorID: "u1"})).
		Reply(http.MethodGet, "/threads/event/e2", apiclienttest.OK(models.Thread{ID: "t2", EventID: "e2", CreatorID: "u1"})).
		Reply(http.MethodGet, "/messages/thread/t1", apiclienttest.OK([]models.Message{{ID: "m1", ThreadID: "t1", Content: "sugeng rawuh"}}))
	gate, room := newFixture(stub)

	_, err := gate.FetchThreadByEventID(ctx, "e1", "u1")
	require.NoError(t, err)
	_, err = room.Load(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, room.Messages(), 1)

	_, err = gate.FetchThreadByEventID(ctx, "e2", "u1")
	require.NoError(t, err)
	require.Empty(t, room.Messages())

	_, err = gate.FetchThreadByEventID(ctx, "e1", "u1")
	require.NoError(t, err)
	require.Len(t, room.Messages(), 1)
}

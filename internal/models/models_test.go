package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(45, 2, 20)
	require.Equal(t, 3, p.TotalPages)
	require.True(t, p.HasNextPage)

	last := NewPagination(45, 3, 20)
	require.False(t, last.HasNextPage)

	empty := NewPagination(0, 0, 0)
	require.Equal(t, 1, empty.Page)
	require.Equal(t, 20, empty.PerPage)
	require.Equal(t, 0, empty.TotalPages)
	require.False(t, empty.HasNextPage)
}

func TestThreadHasParticipant(t *testing.T) {
	thread := Thread{Participants: []DiscussionParticipant{{UserID: "u1"}, {UserID: "u2"}}}
	require.True(t, thread.HasParticipant("u2"))
	require.False(t, thread.HasParticipant("u3"))
}

func TestBeforeCreateKeepsExistingID(t *testing.T) {
	event := Event{ID: "e1"}
	require.NoError(t, event.BeforeCreate(nil))
	require.Equal(t, "e1", event.ID)

	fresh := Message{}
	require.NoError(t, fresh.BeforeCreate(nil))
	require.Len(t, fresh.ID, 36)
}

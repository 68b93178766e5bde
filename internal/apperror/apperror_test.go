package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromWrapsForeignErrorsAsUnknown(t *testing.T) {
	foreign := errors.New("boom")
	appErr := From(foreign)

	require.Equal(t, KindUnknown, appErr.Kind)
	require.Equal(t, "boom", appErr.Message)
	require.ErrorIs(t, appErr, foreign)
}

func TestKindOfSeesThroughWrapping(t *testing.T) {
	err := fmt.Errorf("load thread: %w", New(KindNotFound, "Thread not found"))

	require.Equal(t, KindNotFound, KindOf(err))
	require.True(t, IsKind(err, KindNotFound))
	require.False(t, IsKind(err, KindAPI))
	require.False(t, IsKind(nil, KindNotFound))
	require.Equal(t, "Thread not found", Message(err))
}

func TestErrorString(t *testing.T) {
	err := &Error{Kind: KindAPI, Code: "FORBIDDEN", Message: "not allowed"}
	require.Equal(t, "api (FORBIDDEN): not allowed", err.Error())
	require.Equal(t, "network: Network error", Network("", nil).Error())
}

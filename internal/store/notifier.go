package store

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/kultura-go/internal/apperror"
)

// Notifier surfaces errors to the user, e.g. as a dialog or toast.
type Notifier interface {
	Notify(ctx context.Context, err error)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, err error)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, err error) {
	f(ctx, err)
}

type logNotifier struct {
	logger zerolog.Logger
}

// LogNotifier reports errors as warnings.
func LogNotifier(logger zerolog.Logger) Notifier {
	return logNotifier{logger: logger.With().Str("component", "notifier").Logger()}
}

func (n logNotifier) Notify(_ context.Context, err error) {
	if err == nil {
		return
	}
	n.logger.Warn().
		Err(err).
		Str("kind", string(apperror.KindOf(err))).
		Msg(apperror.Message(err))
}

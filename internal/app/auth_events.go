package app

import (
	"context"
	"fmt"

	"github.com/noah-isme/kultura-go/internal/apperror"
)

// AuthEvent is a session change reported by an external identity provider.
type AuthEvent interface {
	authEvent()
}

// SignedIn carries a token from an OAuth exchange.
type SignedIn struct {
	Token string
}

// SignedOut reports that the provider ended the session.
type SignedOut struct{}

// TokenRefreshed carries a token the provider rotated.
type TokenRefreshed struct {
	Token string
}

func (SignedIn) authEvent()       {}
func (SignedOut) authEvent()      {}
func (TokenRefreshed) authEvent() {}

// HandleAuthEvent applies a provider session change.
func (a *App) HandleAuthEvent(ctx context.Context, event AuthEvent) error {
	switch ev := event.(type) {
	case SignedIn:
		if _, err := a.Auth.AdoptToken(ctx, ev.Token); err != nil {
			return err
		}
		a.loadProfile(ctx)
		return nil
	case TokenRefreshed:
		if ev.Token == "" {
			return apperror.Validation("token is required", nil)
		}
		if err := a.Tokens.Set(ctx, ev.Token); err != nil {
			return apperror.From(fmt.Errorf("store token: %w", err))
		}
		return nil
	case SignedOut:
		if err := a.Tokens.Clear(ctx); err != nil {
			return apperror.From(fmt.Errorf("clear token: %w", err))
		}
		a.resetAll()
		return nil
	default:
		return fmt.Errorf("unsupported auth event %T", event)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/reporting-system/internal/core/domain"
	"github.com/99minutos/reporting-system/internal/core/ports"
)

// AuthenticatorOptions groups the pipeline's collaborators.
type AuthenticatorOptions struct {
	Tokens   TokenIssuer
	Sessions ports.SessionStore
	Users    ports.UserRepository
	// RecheckActive makes every request reload the user and reject it once
	// deactivated. When false a deactivated user keeps access through already
	// issued sessions until they expire or are revoked.
	RecheckActive bool
	Logger        zerolog.Logger
}

// Authenticator turns a raw token into an identity. The token proves who the
// caller claims to be; the live session row proves the claim was not revoked.
type Authenticator struct {
	tokens        TokenIssuer
	sessions      ports.SessionStore
	users         ports.UserRepository
	recheckActive bool
	log           zerolog.Logger
}

func NewAuthenticator(opts AuthenticatorOptions) *Authenticator {
	return &Authenticator{
		tokens:        opts.Tokens,
		sessions:      opts.Sessions,
		users:         opts.Users,
		recheckActive: opts.RecheckActive,
		log:           opts.Logger,
	}
}

// Authenticate returns domain.ErrUnauthenticated for every security failure
// and a wrapped storage error when a dependency could not answer.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		a.log.Debug().Msg("token rejected")
		return nil, domain.ErrUnauthenticated
	}

	sess, err := a.sessions.FindLive(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if sess == nil {
		a.log.Debug().Int64("user_id", claims.UserID).Msg("no live session for token")
		return nil, domain.ErrUnauthenticated
	}
	if sess.UserID != claims.UserID {
		a.log.Warn().Int64("user_id", claims.UserID).Str("session_id", sess.ID).Msg("session owner does not match token subject")
		return nil, domain.ErrUnauthenticated
	}

	if a.recheckActive {
		user, err := a.users.FindByID(ctx, claims.UserID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		if err != nil {
			return nil, fmt.Errorf("authenticate: %w", err)
		}
		if !user.Active {
			a.log.Debug().Int64("user_id", user.ID).Msg("inactive user rejected")
			return nil, domain.ErrUnauthenticated
		}
	}

	return &domain.Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: sess.ID,
		Token:     token,
	}, nil
}

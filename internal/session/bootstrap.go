package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// API is the subset of the backend the bootstrapper needs: token
// issuance and exchanging a token for a player id.
type API interface {
	IssueToken(ctx context.Context) (string, error)
	ResolveUser(ctx context.Context, token string) (model.PlayerID, error)
}

// Bootstrapper obtains a usable credential, reusing the cached one
// when it is fresh enough.
type Bootstrapper struct {
	store  Store
	api    API
	clock  clockwork.Clock
	ttl    time.Duration
	logger *slog.Logger
}

// NewBootstrapper creates a Bootstrapper. A zero ttl means DefaultTTL.
func NewBootstrapper(store Store, api API, clock clockwork.Clock, ttl time.Duration, logger *slog.Logger) *Bootstrapper {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Bootstrapper{
		store:  store,
		api:    api,
		clock:  clock,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "session")),
	}
}

// Session returns a usable credential. The cached credential is reused
// if present and younger than the TTL; otherwise a new token is issued
// and exchanged for a player id, retrying once on an authorization
// failure by reissuing the token. The result is persisted.
func (b *Bootstrapper) Session(ctx context.Context) (*Credential, error) {
	cached, err := b.store.Load()
	if err != nil {
		// A corrupt cache is recoverable; fall through to reissue
		b.logger.Warn("could not load cached credential", slog.Any("error", err))
	}

	if cached != nil && cached.Usable(b.clock.Now(), b.ttl) {
		return cached, nil
	}

	cred, err := b.establish(ctx)
	if err != nil {
		return nil, err
	}

	// Carry the player's name and language preference across reissues
	if cached != nil {
		cred.PlayerName = cached.PlayerName
		cred.Language = cached.Language
	}

	if err := b.store.Save(cred); err != nil {
		// Identity still works this run; only the cache is lost
		b.logger.Warn("could not persist credential", slog.Any("error", err))
	}

	return cred, nil
}

// Update persists changes to the credential, e.g. a new player name.
func (b *Bootstrapper) Update(cred *Credential) error {
	return b.store.Save(cred)
}

func (b *Bootstrapper) establish(ctx context.Context) (*Credential, error) {
	token, err := b.api.IssueToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	playerID, err := b.api.ResolveUser(ctx, token)
	if errors.Is(err, model.ErrUnauthorized) {
		// The token may have expired between issue and exchange;
		// reissue exactly once.
		b.logger.Info("token rejected, reissuing")
		token, err = b.api.IssueToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to reissue token: %w", err)
		}
		playerID, err = b.api.ResolveUser(ctx, token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player id: %w", err)
	}

	return &Credential{
		Token:    token,
		PlayerID: playerID,
		SavedAt:  b.clock.Now(),
	}, nil
}

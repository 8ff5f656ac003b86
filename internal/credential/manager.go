package credential

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"gauth/internal/tokenstore"
)

// Request names the triple a credential is obtained for.
type Request struct {
	Identity string
	API      string
	Profile  string
}

// String returns the triple in identity/api/profile form for error and log
// messages.
func (r Request) String() string {
	return fmt.Sprintf("%s/%s/%s", r.Identity, r.API, r.Profile)
}

// Store is the token persistence collaborator.
type Store interface {
	Load(key string) (*tokenstore.Record, error)
	Save(key string, rec *tokenstore.Record) error
}

// Resolver maps an (api, profile) pair to a concrete scope list.
type Resolver interface {
	Resolve(api, profile string) ([]string, error)
}

// Refresher silently renews a refreshable record.
type Refresher interface {
	Refresh(ctx context.Context, rec *tokenstore.Record, scopes []string) (*tokenstore.Record, error)
}

// Launcher runs one interactive or headless consent flow.
type Launcher interface {
	Launch(ctx context.Context, scopes []string) (*tokenstore.Record, error)
}

// Manager is the credential lifecycle orchestrator and the sole caller of
// the store, resolver, refresher, and launcher. Given an (identity, api,
// profile) triple it produces a valid, ready-to-use credential record,
// sequencing cache lookup, validity check, silent refresh, and consent
// flow fallback.
//
// All collaborators are injected; the manager holds no package-level
// state.
type Manager struct {
	store     Store
	resolver  Resolver
	refresher Refresher
	launcher  Launcher
	logger    *slog.Logger

	// group coalesces concurrent same-key obtains within this process so
	// two callers do not both launch a consent flow for one cache key.
	// Cross-process races remain last-writer-wins; the store's atomic
	// save keeps them safe.
	group singleflight.Group
}

// ManagerConfig configures a credential lifecycle manager.
type ManagerConfig struct {
	Store     Store
	Resolver  Resolver
	Refresher Refresher
	Launcher  Launcher

	// Logger receives lifecycle progress. Defaults to slog.Default().
	// Token values are never logged.
	Logger *slog.Logger
}

// NewManager creates a credential lifecycle manager.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("credential manager requires a token store")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("credential manager requires a scope resolver")
	}
	if cfg.Refresher == nil {
		return nil, errors.New("credential manager requires a refresher")
	}
	if cfg.Launcher == nil {
		return nil, errors.New("credential manager requires a consent launcher")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		store:     cfg.Store,
		resolver:  cfg.Resolver,
		refresher: cfg.Refresher,
		launcher:  cfg.Launcher,
		logger:    logger,
	}, nil
}

// Obtain returns a valid credential record for the request, reusing,
// refreshing, or freshly issuing one as needed.
//
// Per invocation: at most one store write, at most one refresh call, at
// most one consent launch, and no internal retry loop. Errors always name
// the failing triple. Concurrent calls for the same cache key share one
// underlying pass.
func (m *Manager) Obtain(ctx context.Context, req Request) (*tokenstore.Record, error) {
	scopeList, err := m.resolver.Resolve(req.API, req.Profile)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain credential for %s: %w", req, err)
	}

	key := tokenstore.Key(req.Identity, req.API, req.Profile)

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		return m.obtain(ctx, req, key, scopeList)
	})
	if err != nil {
		return nil, err
	}
	return v.(*tokenstore.Record), nil
}

// obtain runs one full pass of the lifecycle state machine for a key.
func (m *Manager) obtain(ctx context.Context, req Request, key string, scopeList []string) (*tokenstore.Record, error) {
	flowID := uuid.NewString()
	logger := m.logger.With("flow_id", flowID, "key", key)

	rec, err := m.store.Load(key)
	switch {
	case err == nil:
		// Cached record found; validity decided below.
	case errors.Is(err, tokenstore.ErrNotFound):
		rec = nil
	default:
		var corrupt *tokenstore.CorruptRecordError
		if errors.As(err, &corrupt) {
			// Not a plain miss: something damaged the cache. Reissue, but
			// say so.
			logger.Warn("stored credential is corrupt, treating as cache miss",
				"path", corrupt.Path,
				"error", corrupt.Err.Error(),
			)
			rec = nil
		} else {
			return nil, fmt.Errorf("cannot obtain credential for %s: %w", req, err)
		}
	}

	// Scope coverage is re-verified at use time: a cached record whose
	// grants no longer cover the requested scopes must not be reused even
	// though it lives under the right key.
	if rec.Valid(scopeList) {
		logger.Debug("reusing valid cached credential")
		return rec, nil
	}

	if rec.Refreshable() {
		refreshed, err := m.refresher.Refresh(ctx, rec, scopeList)
		if err != nil {
			// Refresh failures are recoverable: a fresh consent flow is
			// always a valid path. Absorb and fall through.
			logger.Warn("token refresh failed, falling back to consent flow",
				"error", err.Error(),
			)
		} else if !refreshed.CoversScopes(scopeList) {
			// Refresh renews the original grant; it cannot broaden it.
			logger.Info("refreshed credential does not cover requested scopes, falling back to consent flow")
		} else {
			refreshed.Identity = req.Identity
			refreshed.API = req.API
			refreshed.Profile = req.Profile
			if err := m.store.Save(key, refreshed); err != nil {
				return nil, fmt.Errorf("cannot persist refreshed credential for %s: %w", req, err)
			}
			logger.Info("refreshed credential")
			return refreshed, nil
		}
	}

	issued, err := m.launcher.Launch(ctx, scopeList)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain credential for %s: %w", req, err)
	}

	issued.Identity = req.Identity
	issued.API = req.API
	issued.Profile = req.Profile
	if err := m.store.Save(key, issued); err != nil {
		return nil, fmt.Errorf("cannot persist credential for %s: %w", req, err)
	}

	logger.Info("issued new credential via consent flow")
	return issued, nil
}

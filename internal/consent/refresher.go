package consent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"

	"gauth/internal/tokenstore"
)

// DefaultRefreshTimeout bounds the refresh network call.
const DefaultRefreshTimeout = 30 * time.Second

// Refresher exchanges a stored refresh token for a new access token
// without user interaction. It shares the client credentials artifact with
// the Launcher; both sides of the same OAuth client registration.
type Refresher struct {
	clientSecretPath string
	timeout          time.Duration
	logger           *slog.Logger
}

// RefresherConfig configures a token refresher.
type RefresherConfig struct {
	// ClientSecretPath is the provider-issued client credentials file.
	ClientSecretPath string

	// Timeout bounds the refresh call. Defaults to DefaultRefreshTimeout.
	Timeout time.Duration

	// Logger receives refresh progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewRefresher creates a token refresher.
func NewRefresher(cfg RefresherConfig) *Refresher {
	r := &Refresher{
		clientSecretPath: cfg.ClientSecretPath,
		timeout:          cfg.Timeout,
		logger:           cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultRefreshTimeout
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Refresh renews the record's access token using its refresh token and
// returns a whole new record; the input record is never mutated. Any
// failure (network, revoked token, provider rejection) surfaces as an
// error for the caller to absorb.
func (r *Refresher) Refresh(ctx context.Context, rec *tokenstore.Record, scopes []string) (*tokenstore.Record, error) {
	if !rec.Refreshable() {
		return nil, fmt.Errorf("record carries no refresh token")
	}

	conf, err := loadClientConfig(r.clientSecretPath, scopes)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// A token with only the refresh token set forces TokenSource to renew
	// instead of echoing back a cached access token.
	stale := &oauth2.Token{RefreshToken: rec.RefreshToken}
	tok, err := conf.TokenSource(ctx, stale).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh rejected by provider: %w", err)
	}

	newRec := tokenstore.NewRecord(tok, rec.GrantedScopes)
	// Providers often omit the refresh token from refresh responses;
	// retain the one we already hold.
	if newRec.RefreshToken == "" {
		newRec.RefreshToken = rec.RefreshToken
	}

	return newRec, nil
}

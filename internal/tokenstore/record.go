package tokenstore

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer is the margin applied when checking record validity.
// This accounts for clock skew, network latency, and the time an API call
// made with the token needs to reach the provider.
const expiryBuffer = 60 * time.Second

// Record is one cached credential at rest. It is owned by the Store while
// on disk and by the lifecycle manager while in use. Records are only ever
// replaced whole; no field is mutated in place once a record is saved.
type Record struct {
	// AccessToken is the OAuth access token.
	AccessToken string `json:"access_token"`

	// RefreshToken is the OAuth refresh token (if the provider issued one).
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`

	// GrantedScopes is the ordered list of scopes the credential was
	// actually granted. Validity checks compare this against the scopes a
	// caller requests; the cache key alone is not sufficient because a
	// profile definition can grow after a token was issued.
	GrantedScopes []string `json:"granted_scopes"`

	// Expiry is when the access token expires. Zero means the provider did
	// not report an expiry.
	Expiry time.Time `json:"expiry,omitempty"`

	// Identity, API, and Profile record the triple the credential was
	// issued for. They are metadata for listing and diagnostics; the cache
	// key remains the authoritative location.
	Identity string `json:"identity"`
	API      string `json:"api"`
	Profile  string `json:"profile"`

	// CreatedAt is when the record was first persisted.
	CreatedAt time.Time `json:"created_at"`
}

// Valid reports whether the record can be used as-is for a request needing
// the given scopes: the access token must be present and non-expired (with
// a safety buffer), and the granted scopes must cover every requested
// scope.
func (r *Record) Valid(requested []string) bool {
	if r == nil || r.AccessToken == "" {
		return false
	}
	if !r.Expiry.IsZero() && !time.Now().Add(expiryBuffer).Before(r.Expiry) {
		return false
	}
	return r.CoversScopes(requested)
}

// Refreshable reports whether the record carries a refresh token and can
// therefore be silently renewed even when expired.
func (r *Record) Refreshable() bool {
	return r != nil && r.RefreshToken != ""
}

// CoversScopes reports whether every requested scope is among the granted
// scopes. Scope comparison is exact string equality, as providers do.
func (r *Record) CoversScopes(requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	granted := make(map[string]struct{}, len(r.GrantedScopes))
	for _, s := range r.GrantedScopes {
		granted[s] = struct{}{}
	}
	for _, s := range requested {
		if _, ok := granted[s]; !ok {
			return false
		}
	}
	return true
}

// Expired reports whether the access token is past its expiry (buffer
// included). A record without a reported expiry never counts as expired.
func (r *Record) Expired() bool {
	if r == nil || r.Expiry.IsZero() {
		return false
	}
	return !time.Now().Add(expiryBuffer).Before(r.Expiry)
}

// Token converts the record to an oauth2.Token for use with provider
// client libraries.
func (r *Record) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		Expiry:       r.Expiry,
	}
}

// NewRecord builds a Record from a freshly issued oauth2.Token and the
// scopes that were requested for it. If the provider reported the granted
// scopes on the token response (the "scope" extra field is a
// space-separated list), those take precedence over the requested set.
func NewRecord(tok *oauth2.Token, requestedScopes []string) *Record {
	granted := requestedScopes
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		granted = strings.Fields(scope)
	}

	return &Record{
		AccessToken:   tok.AccessToken,
		RefreshToken:  tok.RefreshToken,
		TokenType:     tok.TokenType,
		GrantedScopes: granted,
		Expiry:        tok.Expiry,
		CreatedAt:     time.Now(),
	}
}

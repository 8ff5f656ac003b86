// Package logging provides structured logging for gauth built on Go's
// standard slog package.
//
// Log entries carry a subsystem identifier so output can be filtered per
// component (Config, Scopes, TokenStore, Credential, Consent). The package
// offers two styles:
//
//   - package-level helpers (Debug, Info, Warn, Error) for CLI glue code,
//     initialized once at startup via InitForCLI;
//   - New, which returns an explicit *slog.Logger for components that take
//     their logger as a dependency (the credential lifecycle manager and
//     its collaborators never log through package-level state).
//
// Token values are never logged by any component; only identities, API
// names, and profile names appear in log output.
package logging

// Package consent drives the interactive authorization-code exchange with
// the identity provider, plus silent token refresh against the same client
// registration.
//
// # Flow modes
//
// The Launcher supports two modes, selected per invocation by the caller:
//
//   - interactive: a temporary HTTP listener on a random loopback port
//     receives the provider redirect; the system browser is opened to the
//     authorization URL. PKCE (S256) and a random state parameter protect
//     the exchange.
//   - headless: the authorization URL is printed and the user pastes the
//     resulting code back into the terminal.
//
// Both modes are bounded by a timeout and run at most one full flow per
// Launch call. The wire protocol itself is owned by golang.org/x/oauth2;
// this package only orchestrates it.
//
// # Client credentials
//
// Flows require a provider-issued client_secret.json. A missing or
// unparseable file surfaces as *MissingClientCredentialsError before any
// listener or network side effects occur.
package consent

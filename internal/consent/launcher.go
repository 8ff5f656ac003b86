package consent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/oauth2"

	"gauth/internal/tokenstore"
)

// DefaultConsentTimeout bounds how long a consent flow may block waiting
// for the user. Interactive flows wait for the browser redirect; headless
// flows wait for the pasted code.
const DefaultConsentTimeout = 10 * time.Minute

// headlessRedirectURI is the out-of-band redirect used in console mode,
// where no local listener can receive the callback.
const headlessRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// Mode selects how the authorization code reaches us.
type Mode int

const (
	// ModeInteractive runs a local callback listener and opens the
	// system browser.
	ModeInteractive Mode = iota

	// ModeHeadless prints the authorization URL and reads the code from
	// the terminal.
	ModeHeadless
)

// String makes Mode satisfy the fmt.Stringer interface.
func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// Launcher drives the authorization-code exchange with the identity
// provider when no reusable credential exists. One Launch call performs at
// most one full flow; there is no retry inside the launcher.
type Launcher struct {
	clientSecretPath string
	mode             Mode
	timeout          time.Duration
	output           io.Writer
	logger           *slog.Logger
	openBrowser      func(url string) error
	readCode         func() (string, error)
}

// LauncherConfig configures a consent flow launcher.
type LauncherConfig struct {
	// ClientSecretPath is the provider-issued client credentials file
	// (client_secret.json).
	ClientSecretPath string

	// Mode selects interactive or headless operation.
	Mode Mode

	// Timeout bounds the whole flow. Defaults to DefaultConsentTimeout.
	Timeout time.Duration

	// Output receives user-facing instructions (the authorization URL).
	// Defaults to os.Stdout.
	Output io.Writer

	// Logger receives flow progress. Defaults to slog.Default().
	Logger *slog.Logger

	// OpenBrowser overrides browser launching (tests). Defaults to the
	// platform opener.
	OpenBrowser func(url string) error

	// ReadCode overrides code input in headless mode (tests). Defaults to
	// a readline prompt on the terminal.
	ReadCode func() (string, error)
}

// NewLauncher creates a consent flow launcher.
func NewLauncher(cfg LauncherConfig) *Launcher {
	l := &Launcher{
		clientSecretPath: cfg.ClientSecretPath,
		mode:             cfg.Mode,
		timeout:          cfg.Timeout,
		output:           cfg.Output,
		logger:           cfg.Logger,
		openBrowser:      cfg.OpenBrowser,
		readCode:         cfg.ReadCode,
	}
	if l.timeout <= 0 {
		l.timeout = DefaultConsentTimeout
	}
	if l.output == nil {
		l.output = os.Stdout
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.openBrowser == nil {
		l.openBrowser = openBrowser
	}
	if l.readCode == nil {
		l.readCode = readCodeFromTerminal
	}
	return l
}

// Launch runs one consent flow for the given scopes and returns the
// resulting credential record. The client credentials file is validated
// before any network or listener side effects occur.
func (l *Launcher) Launch(ctx context.Context, scopes []string) (*tokenstore.Record, error) {
	conf, err := loadClientConfig(l.clientSecretPath, scopes)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	switch l.mode {
	case ModeHeadless:
		return l.launchHeadless(ctx, conf, scopes)
	default:
		return l.launchInteractive(ctx, conf, scopes)
	}
}

// launchInteractive starts a loopback callback listener, opens the
// browser, and waits for the provider redirect.
func (l *Launcher) launchInteractive(ctx context.Context, conf *oauth2.Config, scopes []string) (*tokenstore.Record, error) {
	srv := newCallbackServer()
	redirectURI, err := srv.Start(ctx)
	if err != nil {
		return nil, &ConsentFailedError{Reason: "could not start local callback listener", Err: err}
	}
	defer srv.Stop()

	conf.RedirectURL = redirectURI

	pkce, err := generatePKCE()
	if err != nil {
		return nil, &ConsentFailedError{Reason: "could not generate PKCE challenge", Err: err}
	}
	state, err := generateState()
	if err != nil {
		return nil, &ConsentFailedError{Reason: "could not generate state", Err: err}
	}

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	fmt.Fprintf(l.output, "Opening your browser for authorization. If it does not open, visit:\n\n  %s\n\n", authURL)
	if err := l.openBrowser(authURL); err != nil {
		l.logger.Warn("could not open browser, waiting for manual navigation",
			"error", err.Error(),
		)
	}

	result, err := srv.WaitForCallback(ctx)
	if err != nil {
		return nil, &ConsentFailedError{Reason: "timed out waiting for authorization callback", Err: err}
	}
	if result.IsError() {
		return nil, &ConsentFailedError{
			Reason: fmt.Sprintf("provider returned %s: %s", result.Error, result.ErrorDescription),
		}
	}
	if result.State != state {
		return nil, &ConsentFailedError{Reason: "state parameter mismatch in callback"}
	}
	if result.Code == "" {
		return nil, &ConsentFailedError{Reason: "callback carried no authorization code"}
	}

	tok, err := conf.Exchange(ctx, result.Code,
		oauth2.SetAuthURLParam("code_verifier", pkce.Verifier),
	)
	if err != nil {
		return nil, &ConsentFailedError{Reason: "authorization code exchange rejected", Err: err}
	}

	return tokenstore.NewRecord(tok, scopes), nil
}

// launchHeadless prints the authorization URL and reads the pasted code
// from the terminal.
func (l *Launcher) launchHeadless(ctx context.Context, conf *oauth2.Config, scopes []string) (*tokenstore.Record, error) {
	conf.RedirectURL = headlessRedirectURI

	state, err := generateState()
	if err != nil {
		return nil, &ConsentFailedError{Reason: "could not generate state", Err: err}
	}

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
	fmt.Fprintf(l.output, "Visit this URL in a browser, authorize access, and paste the code below:\n\n  %s\n\n", authURL)

	type codeResult struct {
		code string
		err  error
	}
	codeCh := make(chan codeResult, 1)
	go func() {
		code, err := l.readCode()
		codeCh <- codeResult{code: code, err: err}
	}()

	var code string
	select {
	case <-ctx.Done():
		return nil, &ConsentFailedError{Reason: "timed out waiting for authorization code", Err: ctx.Err()}
	case r := <-codeCh:
		if r.err != nil {
			return nil, &ConsentFailedError{Reason: "could not read authorization code", Err: r.err}
		}
		code = strings.TrimSpace(r.code)
	}
	if code == "" {
		return nil, &ConsentFailedError{Reason: "empty authorization code"}
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, &ConsentFailedError{Reason: "authorization code exchange rejected", Err: err}
	}

	return tokenstore.NewRecord(tok, scopes), nil
}

// readCodeFromTerminal prompts for the authorization code on the
// controlling terminal.
func readCodeFromTerminal() (string, error) {
	rl, err := readline.New("Enter authorization code: ")
	if err != nil {
		return "", err
	}
	defer rl.Close()

	line, err := rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", fmt.Errorf("authorization cancelled")
		}
		return "", err
	}
	return line, nil
}

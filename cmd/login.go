package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"gauth/internal/consent"
	"gauth/internal/config"
	"gauth/internal/credential"
	"gauth/internal/scopes"
	"gauth/internal/tokenstore"
	"gauth/pkg/logging"
)

// Login-specific flags
var (
	loginAccount      string
	loginAPI          string
	loginProfile      string
	loginClientSecret string
	loginHeadless     bool
	loginAll          bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Obtain a credential for an (account, api, profile) triple",
	Long: `Obtain a valid OAuth credential for an account, API, and scope profile.

A cached credential is reused when it is still valid and covers the requested
scopes. An expired credential with a refresh token is silently refreshed.
Only when neither works does gauth launch a consent flow: a browser-based
authorization by default, or a console flow with --headless.

Examples:
  gauth login --account user@x.com --api gmail --profile send
  gauth login --account user@x.com --api youtube --profile read --headless
  gauth login --all                 # authorize every grant in users.yaml`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginAccount, "account", "", "account identity (e.g. an email address)")
	loginCmd.Flags().StringVar(&loginAPI, "api", "", "API name (e.g. gmail)")
	loginCmd.Flags().StringVar(&loginProfile, "profile", "", "scope profile name (e.g. send)")
	loginCmd.Flags().StringVar(&loginClientSecret, "client-secret", "", "path to client_secret.json (overrides "+config.EnvClientSecret+")")
	loginCmd.Flags().BoolVar(&loginHeadless, "headless", false, "console consent flow instead of a browser")
	loginCmd.Flags().BoolVar(&loginAll, "all", false, "authorize every grant listed in the users file")

	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manager, err := buildManager(cfg)
	if err != nil {
		return err
	}

	if loginAll {
		return loginToAll(cmd, manager, cfg)
	}

	if loginAccount == "" || loginAPI == "" || loginProfile == "" {
		return fmt.Errorf("login requires --account, --api, and --profile (or --all)")
	}

	return loginOne(cmd, manager, credential.Request{
		Identity: loginAccount,
		API:      loginAPI,
		Profile:  loginProfile,
	})
}

// loginOne obtains a single credential, with a progress spinner while an
// interactive flow may be waiting on the browser.
func loginOne(cmd *cobra.Command, manager *credential.Manager, req credential.Request) error {
	var s *spinner.Spinner
	if !loginHeadless {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = fmt.Sprintf(" authorizing %s...", req)
		s.Start()
	}

	rec, err := manager.Obtain(cmd.Context(), req)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Credential ready for %s (expires %s)\n", req, expiryText(rec))
	return nil
}

// loginToAll walks the user grants file and obtains a credential for every
// (user, api, profile) grant. Flows are sequential: each one may need the
// browser.
func loginToAll(cmd *cobra.Command, manager *credential.Manager, cfg config.Config) error {
	grants, err := config.LoadUserGrants(cfg.UsersFile)
	if err != nil {
		return err
	}

	var failed int
	for _, grant := range grants {
		apis := make([]string, 0, len(grant.APIs))
		for api := range grant.APIs {
			apis = append(apis, api)
		}
		sort.Strings(apis)

		for _, api := range apis {
			req := credential.Request{
				Identity: grant.User,
				API:      api,
				Profile:  grant.APIs[api],
			}
			if err := loginOne(cmd, manager, req); err != nil {
				logging.Error("Login", err, "Failed to authorize %s", req)
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d grant(s) could not be authorized", failed)
	}
	return nil
}

// buildManager wires the credential lifecycle manager from configuration.
func buildManager(cfg config.Config) (*credential.Manager, error) {
	table, err := scopes.LoadTable(cfg.ScopesFile)
	if err != nil {
		return nil, err
	}

	store, err := tokenstore.NewStore(tokenstore.StoreConfig{Dir: cfg.TokenDir})
	if err != nil {
		return nil, err
	}

	clientSecret := cfg.ResolveClientSecret(loginClientSecret)
	logger := logging.New(logging.ParseLevel(logLevel), os.Stderr)

	mode := consent.ModeInteractive
	if loginHeadless {
		mode = consent.ModeHeadless
	}

	launcher := consent.NewLauncher(consent.LauncherConfig{
		ClientSecretPath: clientSecret,
		Mode:             mode,
		Logger:           logger,
	})
	refresher := consent.NewRefresher(consent.RefresherConfig{
		ClientSecretPath: clientSecret,
		Logger:           logger,
	})

	return credential.NewManager(credential.ManagerConfig{
		Store:     store,
		Resolver:  table,
		Refresher: refresher,
		Launcher:  launcher,
		Logger:    logger,
	})
}

func expiryText(rec *tokenstore.Record) string {
	if rec.Expiry.IsZero() {
		return "never"
	}
	return rec.Expiry.Local().Format(time.RFC3339)
}

package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"gauth/internal/consent"
	"gauth/internal/config"
	"gauth/internal/scopes"
	"gauth/pkg/logging"
)

// Exit codes for CLI commands. These are stable for scripting.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates a configuration problem the user must fix
	// (unknown scope profile, missing client credentials file).
	ExitCodeConfigError = 2
	// ExitCodeConsentFailed indicates the OAuth consent flow failed.
	ExitCodeConsentFailed = 3
)

// Persistent flags shared by all subcommands.
var (
	configDir string
	logLevel  string
)

// rootCmd represents the base command for the gauth application.
var rootCmd = &cobra.Command{
	Use:   "gauth",
	Short: "Cache and refresh per-account OAuth credentials for external APIs",
	Long: `gauth manages OAuth2 credentials for multiple accounts and APIs.

Each credential is cached per (account, api, profile) triple. gauth reuses a
cached token while it is valid, silently refreshes it when it expires, and
only opens an interactive consent flow when neither is possible.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.InitForCLI(logging.ParseLevel(logLevel), os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gauth version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var unknownProfile *scopes.UnknownProfileError
	if errors.As(err, &unknownProfile) {
		return ExitCodeConfigError
	}

	var missingCreds *consent.MissingClientCredentialsError
	if errors.As(err, &missingCreds) {
		return ExitCodeConfigError
	}

	var consentFailed *consent.ConsentFailedError
	if errors.As(err, &consentFailed) {
		return ExitCodeConsentFailed
	}

	return ExitCodeError
}

// loadConfig loads gauth configuration from the selected directory.
func loadConfig() (config.Config, error) {
	dir := configDir
	if dir == "" {
		dir = config.GetDefaultConfigPathOrPanic()
	}
	return config.LoadConfig(dir)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default is $HOME/.config/gauth)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}

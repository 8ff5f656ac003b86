package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gauth/internal/tokenstore"
)

// Logout-specific flags
var (
	logoutAccount string
	logoutAPI     string
	logoutProfile string
)

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the cached credential for an (account, api, profile) triple",
	Long: `Remove one cached credential from the token directory.

This only deletes the local record; it does not revoke the grant at the
provider.`,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().StringVar(&logoutAccount, "account", "", "account identity (e.g. an email address)")
	logoutCmd.Flags().StringVar(&logoutAPI, "api", "", "API name (e.g. gmail)")
	logoutCmd.Flags().StringVar(&logoutProfile, "profile", "", "scope profile name (e.g. send)")
	_ = logoutCmd.MarkFlagRequired("account")
	_ = logoutCmd.MarkFlagRequired("api")
	_ = logoutCmd.MarkFlagRequired("profile")

	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := tokenstore.NewStore(tokenstore.StoreConfig{Dir: cfg.TokenDir})
	if err != nil {
		return err
	}

	key := tokenstore.Key(logoutAccount, logoutAPI, logoutProfile)
	if err := store.Delete(key); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed cached credential %s\n", key)
	return nil
}

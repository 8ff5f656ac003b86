package cmd

import (
	"github.com/spf13/cobra"

	"gauth/internal/formatting"
	"gauth/internal/tokenstore"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cached credentials and their validity",
	Long: `List every cached credential with its account, API, profile, validity
state, and expiry. Token values are never displayed.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := tokenstore.NewStore(tokenstore.StoreConfig{Dir: cfg.TokenDir})
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}

	formatting.CredentialTable(cmd.OutOrStdout(), records)
	return nil
}

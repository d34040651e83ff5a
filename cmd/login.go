package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/chatsts/internal/cliconfig"
)

var (
	loginClientID     string
	loginClientSecret string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store client credentials for a remote server",
	Long: `Stores a client ID and secret for the server given by --server.
'chatsts issue' presents them when no --client-id / --client-secret flags are given.`,
	Example: `  chatsts login --server https://sts.example.com --client-id svc --client-secret s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server := f.Remote()
		if server == "" {
			return fmt.Errorf("--server is required")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return err
		}
		if err := cfg.SetCredential(server, &cliconfig.Credential{
			ClientID:     loginClientID,
			ClientSecret: loginClientSecret,
		}); err != nil {
			return err
		}
		if err := cliconfig.Save(cfg); err != nil {
			return err
		}

		log.Info().Msgf("Stored credentials for %s", server)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored client credentials for a remote server",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := f.Remote()
		if server == "" {
			return fmt.Errorf("--server is required")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return err
		}
		removed, err := cfg.RemoveCredential(server)
		if err != nil {
			return err
		}
		if !removed {
			log.Warn().Msgf("No credentials stored for %s", server)
			return nil
		}
		if err := cliconfig.Save(cfg); err != nil {
			return err
		}

		log.Info().Msgf("Removed credentials for %s", server)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringVar(&loginClientID, "client-id", "", "Client ID")
	loginCmd.Flags().StringVar(&loginClientSecret, "client-secret", "", "Client secret")

	_ = loginCmd.MarkFlagRequired("client-id")
	_ = loginCmd.MarkFlagRequired("client-secret")
}

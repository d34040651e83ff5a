package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/chatsts/internal/cliconfig"
	"github.com/darmiel/chatsts/internal/core"
	"github.com/darmiel/chatsts/internal/issuer"
	"github.com/darmiel/chatsts/internal/service"
	"github.com/darmiel/chatsts/pkg/client"
)

var (
	issueIdentity     string
	issueAudience     string
	issueAnonymous    bool
	issueClientID     string
	issueClientSecret string
	issueForm         bool
	issueDecode       bool
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a token for an identity",
	Long: `Issues a signed token for the given identity and prints it to stdout.

Modes:
  1. Local (Default): Uses the configured signing secret and client policy.
  2. Remote (--server): Requests the token from a running chatsts server.`,
	Example: `  # Issue locally
  chatsts issue --identity alice --anonymous

  # Issue from a remote server, form-encoded like the browser SDK
  chatsts issue --server https://sts.example.com --identity alice --form --decode

  # Present the credentials stored with 'chatsts login'
  chatsts issue --server https://sts.example.com --identity alice`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			token string
			err   error
		)
		if f.Remote() != "" {
			log.Debug().Msg("Running 'issue' command in remote mode")
			token, err = issueTokenRemote(cmd)
		} else {
			log.Debug().Msg("Running 'issue' command in local mode")
			token, err = issueTokenLocally(cmd)
		}
		if err != nil {
			return err
		}

		fmt.Println(token)

		if issueDecode {
			claims, err := issuer.Decode(token)
			if err != nil {
				return err
			}
			printClaims(claims)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueCmd)

	issueCmd.Flags().StringVarP(&issueIdentity, "identity", "i", "", "User identity (sub claim)")
	issueCmd.Flags().StringVar(&issueAudience, "audience", "", "Audience override (optional)")
	issueCmd.Flags().BoolVar(&issueAnonymous, "anonymous", false, "Mark the user as anonymous")
	issueCmd.Flags().StringVar(&issueClientID, "client-id", "", "Client ID (optional)")
	issueCmd.Flags().StringVar(&issueClientSecret, "client-secret", "", "Client secret (optional)")
	issueCmd.Flags().BoolVar(&issueForm, "form", false, "Send the request form-encoded (remote mode only)")
	issueCmd.Flags().BoolVarP(&issueDecode, "decode", "d", false, "Print the decoded claims")

	_ = issueCmd.MarkFlagRequired("identity")
}

func issueRequest() client.IssueTokenRequest {
	return client.IssueTokenRequest{
		Identity:     issueIdentity,
		Audience:     issueAudience,
		IsAnonymous:  issueAnonymous,
		ClientID:     issueClientID,
		ClientSecret: issueClientSecret,
	}
}

func issueTokenRemote(cmd *cobra.Command) (string, error) {
	cli, err := f.GetClient()
	if err != nil {
		return "", err
	}

	req := issueRequest()
	if req.ClientID == "" && req.ClientSecret == "" {
		applyStoredCredential(&req)
	}

	log.Info().Msgf("Requesting token from %s...", f.Remote())
	issue := cli.IssueToken
	if issueForm {
		issue = cli.IssueTokenForm
	}
	token, correlation, err := issue(cmd.Context(), req)
	if err != nil {
		return "", logError(err, correlation, "failed to issue token")
	}
	return token, nil
}

// applyStoredCredential fills in the credentials saved by 'chatsts login', if any.
func applyStoredCredential(req *client.IssueTokenRequest) {
	cfg, err := cliconfig.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stored credentials")
		return
	}
	cred, err := cfg.GetCredential(f.Remote())
	if err != nil {
		if !errors.Is(err, cliconfig.ErrCredentialNotFound) {
			log.Warn().Err(err).Msg("failed to look up stored credentials")
		}
		return
	}
	log.Debug().Msg("using stored client credentials")
	req.ClientID = cred.ClientID
	req.ClientSecret = cred.ClientSecret
}

func issueTokenLocally(cmd *cobra.Command) (string, error) {
	svc, _, err := f.GetLocalService()
	if err != nil {
		return "", err
	}

	req := issueRequest()
	claimRequest := core.ClaimRequest{
		Identity:    req.Identity,
		Audience:    req.Audience,
		IsAnonymous: req.IsAnonymous,
	}
	if req.ClientID != "" {
		claimRequest.ClientID = req.ClientID
	}
	if req.ClientSecret != "" {
		claimRequest.ClientSecret = req.ClientSecret
	}

	ctx := log.Logger.WithContext(cmd.Context())
	token, err := svc.IssueToken(ctx, claimRequest)
	if err != nil {
		var httpErr *service.HTTPError
		if errors.As(err, &httpErr) {
			return "", fmt.Errorf("%s (status %d)", httpErr.Message, httpErr.StatusCode)
		}
		return "", err
	}
	return token.Value, nil
}

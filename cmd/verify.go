package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/chatsts/internal/core"
	"github.com/darmiel/chatsts/internal/issuer"
)

var verifyIgnoreExpiry bool

var verifyCmd = &cobra.Command{
	Use:   "verify [token]",
	Short: "Verify a token with the configured signing secret",
	Long: `Checks the HS256 signature, the issuer and the expiry of a token and prints its claims.
Reads the token from stdin if no argument (or "-") is given.`,
	Example: `  chatsts issue -i alice | chatsts verify`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := readToken(args)
		if err != nil {
			return err
		}

		cfg, err := f.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		iss, err := issuer.New(cfg.Token)
		if err != nil {
			return err
		}

		var claims *core.Claims
		if verifyIgnoreExpiry {
			claims, err = iss.VerifyIgnoringExpiry(token)
		} else {
			claims, err = iss.Verify(token)
		}
		if err != nil {
			fmt.Printf("%s %s\n", redCross, bold("token is invalid"))
			return err
		}

		fmt.Printf("%s %s\n", greenCheck, bold("token is valid"))
		printClaims(claims)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyIgnoreExpiry, "ignore-expiry", false, "Only check the signature and issuer")
}

func readToken(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return strings.TrimSpace(args[0]), nil
	}
	log.Debug().Msg("Reading token from stdin")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

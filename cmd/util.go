package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/chatsts/internal/core"
	"github.com/darmiel/chatsts/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✘")
)

// logError logs err together with the correlation ID of the failed request.
func logError(err error, correlation, msg string) error {
	var apiErr client.APIError
	if errors.As(err, &apiErr) {
		log.Error().
			Int("status", apiErr.StatusCode).
			Str("correlation_id", correlation).
			Msgf("%s: %s", msg, apiErr.Message)
		return fmt.Errorf("%s", msg)
	}
	log.Error().Err(err).Str("correlation_id", correlation).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// printClaims renders claims as a table on stdout.
func printClaims(claims *core.Claims) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Claim", "Value"})

	iat := time.Unix(claims.IssuedAt, 0)
	exp := time.Unix(claims.ExpiresAt, 0)
	timeLeft := time.Until(exp).Round(time.Second)

	t.AppendRows([]table.Row{
		{"sub", bold(truncate(claims.Subject, 64))},
		{"iss", claims.Issuer},
		{"aud", claims.Audience},
		{"iat", fmt.Sprintf("%d %s", claims.IssuedAt, faint(iat.Format(time.RFC3339)))},
		{"exp", fmt.Sprintf("%d %s", claims.ExpiresAt, faint(exp.Format(time.RFC3339)+" ("+timeLeft.String()+")"))},
		{"isAnonymous", strconv.FormatBool(claims.IsAnonymous)},
	})

	s := table.StyleRounded
	s.Format.Header = text.FormatDefault
	t.SetStyle(s)
	t.Render()
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/chatsts/internal/api/presenter"
	"github.com/darmiel/chatsts/internal/buildinfo"
	"github.com/darmiel/chatsts/internal/core"
)

// maxBodyBytes bounds the claim request body.
const maxBodyBytes = 64 << 10

// IssueResponse is the exact shape the chat widget SDK expects.
type IssueResponse struct {
	JWT string `json:"jwt"`
}

// handleHealth reports that the server is up.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, map[string]bool{"ok": true}, http.StatusOK)
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}

// handleIssue validates the claim request and responds with a signed token.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var req core.ClaimRequest
	if err := DecodePayload(w, r, &req); err != nil {
		logger.Warn().Err(err).Msg("failed to decode issue request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := s.tokenService.IssueToken(ctx, req)
	if err != nil {
		logger.Warn().Err(err).Msg("token issuance failed")
		presenter.Err(w, r, err)
		return
	}

	logger.Info().Msg("token issued successfully")
	presenter.JSON(w, r, IssueResponse{JWT: token.Value}, http.StatusOK)
}

// DecodePayload reads a JSON or form-encoded body into dest.
// Unknown fields are ignored, an empty body decodes to the zero value.
func DecodePayload(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	raw := make(map[string]any)

	mediaType := strings.TrimSpace(strings.Split(r.Header.Get("Content-Type"), ";")[0])
	switch strings.ToLower(mediaType) {
	case "application/json", "":
		dec := json.NewDecoder(r.Body)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		for key, values := range r.PostForm {
			if len(values) > 0 {
				raw[key] = values[0]
			}
		}
	default:
		return fmt.Errorf("unsupported content type '%s'", mediaType)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   dest,
	})
	if err != nil {
		return fmt.Errorf("creating payload decoder: %w", err)
	}
	return decoder.Decode(raw)
}

package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/darmiel/chatsts/internal/api"
)

// IssueTokenRequest contains the parameters for issuing a token.
type IssueTokenRequest struct {
	// Identity becomes the sub claim.
	Identity string `json:"identity"`

	// Audience overrides the server's default audience.
	Audience string `json:"audience,omitempty"`

	// IsAnonymous is copied into the isAnonymous claim.
	IsAnonymous bool `json:"isAnonymous"`

	// ClientID and ClientSecret are only required if the server verifies client credentials.
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// IssueToken requests a new token and returns the compact JWT and the correlation ID of the request.
func (c *Client) IssueToken(ctx context.Context, req IssueTokenRequest) (string, string, error) {
	var resp api.IssueResponse
	correlation, err := c.postJSON(ctx, c.url().
		setPath(api.IssueTokenRoute).
		build(), req, &resp)
	if err != nil {
		return "", correlation, fmt.Errorf("issuing token: %w", err)
	}
	return resp.JWT, correlation, nil
}

// IssueTokenForm sends the request form-encoded, the way the browser SDK does.
func (c *Client) IssueTokenForm(ctx context.Context, req IssueTokenRequest) (string, string, error) {
	form := url.Values{}
	form.Set("identity", req.Identity)
	form.Set("isAnonymous", strconv.FormatBool(req.IsAnonymous))
	if req.Audience != "" {
		form.Set("aud", req.Audience)
	}
	if req.ClientID != "" {
		form.Set("clientId", req.ClientID)
	}
	if req.ClientSecret != "" {
		form.Set("clientSecret", req.ClientSecret)
	}

	var resp api.IssueResponse
	correlation, err := c.postForm(ctx, c.url().
		setPath(api.IssueTokenRoute).
		build(), form, &resp)
	if err != nil {
		return "", correlation, fmt.Errorf("issuing token: %w", err)
	}
	return resp.JWT, correlation, nil
}

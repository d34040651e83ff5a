package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/core"
)

func TestVerifiers(t *testing.T) {
	const (
		id     = "cs-client-id"
		secret = "client-s3cret"
	)

	tests := []struct {
		name       string
		client     config.ClientConfig
		req        core.ClaimRequest
		wantErr    error
		wantReason string
	}{
		// disabled
		{
			name:   "Disabled Accepts Foreign Client",
			client: config.ClientConfig{Mode: config.ModeDisabled},
			req:    core.ClaimRequest{ClientID: "someone-else"},
		},

		// advisory
		{
			name:   "Advisory Without ClientID",
			client: config.ClientConfig{Mode: config.ModeAdvisory},
			req:    core.ClaimRequest{},
		},
		{
			name:   "Advisory Matching ClientID",
			client: config.ClientConfig{Mode: config.ModeAdvisory},
			req:    core.ClaimRequest{ClientID: id},
		},
		{
			name:       "Advisory Foreign ClientID",
			client:     config.ClientConfig{Mode: config.ModeAdvisory},
			req:        core.ClaimRequest{ClientID: "someone-else"},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidClientID,
		},
		{
			name:   "Advisory Empty ClientID",
			client: config.ClientConfig{Mode: config.ModeAdvisory},
			req:    core.ClaimRequest{ClientID: ""},
		},
		{
			name:       "Advisory Numeric ClientID",
			client:     config.ClientConfig{Mode: config.ModeAdvisory},
			req:        core.ClaimRequest{ClientID: 12345.0},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidClientID,
		},
		{
			name:       "Advisory Array ClientID",
			client:     config.ClientConfig{Mode: config.ModeAdvisory},
			req:        core.ClaimRequest{ClientID: []any{id}},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidClientID,
		},
		{
			name:       "Advisory Object ClientID",
			client:     config.ClientConfig{Mode: config.ModeAdvisory},
			req:        core.ClaimRequest{ClientID: map[string]any{"id": id}},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidClientID,
		},
		{
			name:   "Advisory Ignores Secret",
			client: config.ClientConfig{Mode: config.ModeAdvisory},
			req:    core.ClaimRequest{ClientID: id, ClientSecret: "wrong"},
		},

		// strict
		{
			name:   "Strict Matching",
			client: config.ClientConfig{Mode: config.ModeStrict, Secret: secret},
			req:    core.ClaimRequest{ClientID: id, ClientSecret: secret},
		},
		{
			name:       "Strict Wrong Secret",
			client:     config.ClientConfig{Mode: config.ModeStrict, Secret: secret},
			req:        core.ClaimRequest{ClientID: id, ClientSecret: secret + "x"},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
		{
			name:       "Strict Missing Secret",
			client:     config.ClientConfig{Mode: config.ModeStrict, Secret: secret},
			req:        core.ClaimRequest{ClientID: id},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
		{
			name:       "Strict Missing ClientID",
			client:     config.ClientConfig{Mode: config.ModeStrict, Secret: secret},
			req:        core.ClaimRequest{ClientSecret: secret},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
		{
			name:       "Strict Non-String Secret",
			client:     config.ClientConfig{Mode: config.ModeStrict, Secret: secret},
			req:        core.ClaimRequest{ClientID: id, ClientSecret: 12345.0},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
		{
			name:       "Legacy Switch Selects Strict",
			client:     config.ClientConfig{ValidateSecret: true, Secret: secret},
			req:        core.ClaimRequest{ClientID: id, ClientSecret: "nope"},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},

		// fixed
		{
			name:   "Fixed Matching",
			client: config.ClientConfig{Mode: config.ModeFixed, ID: "svc", Secret: secret},
			req:    core.ClaimRequest{ClientID: "svc", ClientSecret: secret},
		},
		{
			name:       "Fixed Missing Secret",
			client:     config.ClientConfig{Mode: config.ModeFixed, ID: "svc", Secret: secret},
			req:        core.ClaimRequest{ClientID: "svc"},
			wantErr:    core.ErrMissingCredentials,
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "Fixed Missing ClientID",
			client:     config.ClientConfig{Mode: config.ModeFixed, ID: "svc", Secret: secret},
			req:        core.ClaimRequest{ClientSecret: secret},
			wantErr:    core.ErrMissingCredentials,
			wantReason: ReasonMissingCredentials,
		},
		{
			name:       "Fixed Wrong ClientID",
			client:     config.ClientConfig{Mode: config.ModeFixed, ID: "svc", Secret: secret},
			req:        core.ClaimRequest{ClientID: "svd", ClientSecret: secret},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
		{
			name:       "Fixed Secret Prefix",
			client:     config.ClientConfig{Mode: config.ModeFixed, ID: "svc", Secret: secret},
			req:        core.ClaimRequest{ClientID: "svc", ClientSecret: secret[:len(secret)-1]},
			wantErr:    core.ErrInvalidCredentials,
			wantReason: ReasonInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(t, tt.client)

			_, err := v.Validate(withIdentity(tt.req))
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			var rejection *core.RejectionError
			if !errors.As(err, &rejection) {
				t.Fatalf("Validate() error is not a RejectionError: %T", err)
			}
			if rejection.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", rejection.Reason, tt.wantReason)
			}
		})
	}
}

func TestNewVerifier_UnknownMode(t *testing.T) {
	if _, err := NewVerifier(config.ClientConfig{Mode: "psychic"}); err == nil {
		t.Errorf("NewVerifier() expected error for unknown mode")
	}
}

func TestRejectionError_DoesNotLeakExpectedValues(t *testing.T) {
	v := newTestValidator(t, config.ClientConfig{Mode: config.ModeStrict, Secret: "very-secret-value"})

	_, err := v.Validate(core.ClaimRequest{Identity: "alice", ClientID: "x", ClientSecret: "y"})
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	for _, leaked := range []string{"very-secret-value", "cs-client-id"} {
		if strings.Contains(err.Error(), leaked) {
			t.Errorf("error %q leaks %q", err.Error(), leaked)
		}
	}
}

func withIdentity(req core.ClaimRequest) core.ClaimRequest {
	req.Identity = "alice"
	return req
}

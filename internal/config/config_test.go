package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
)

// clearEnv makes sure nothing from the test environment leaks into viper.
func clearEnv(t *testing.T) {
	t.Helper()
	for key, legacy := range legacyEnv {
		t.Setenv(legacy, "")
		t.Setenv(EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), "")
	}
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv(EnvPrefix+"_CORS_ALLOWED_ORIGINS", "")
}

func TestLoad_MissingSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_ISSUER", "cs-client-id")

	_, err := Load("")
	if !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("Load() error = %v, want ErrMissingSecret", err)
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("JWT_ISSUER", "cs-client-id")
	t.Setenv("JWT_EXPIRY", "60")
	t.Setenv("VALIDATE_CLIENT_SECRET", "true")
	t.Setenv("EXPECTED_CLIENT_SECRET", "client-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Token.Secret.Reveal() != "legacy-secret" {
		t.Errorf("Token.Secret not loaded")
	}
	if cfg.Token.Lifetime != 60 {
		t.Errorf("Token.Lifetime = %d, want 60", cfg.Token.Lifetime)
	}
	if cfg.Token.Audience != DefaultAudience {
		t.Errorf("Token.Audience = %q", cfg.Token.Audience)
	}
	if cfg.Client.Mode != ModeStrict {
		t.Errorf("Client.Mode = %q, want strict", cfg.Client.Mode)
	}
	if cfg.Client.ID != "cs-client-id" {
		t.Errorf("Client.ID = %q, want issuer", cfg.Client.ID)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORS.AllowedOrigins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("CHATSTS_TOKEN_SECRET", "new-secret")
	t.Setenv("JWT_ISSUER", "cs-client-id")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token.Secret.Reveal() != "new-secret" {
		t.Errorf("Token.Secret = %q, want the prefixed value", cfg.Token.Secret.Reveal())
	}
	if cfg.Client.Mode != ModeAdvisory {
		t.Errorf("Client.Mode = %q, want advisory", cfg.Client.Mode)
	}
	if cfg.Server.Addr != DefaultAddr || cfg.Token.Lifetime != DefaultLifetime {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.RateLimit.Requests != DefaultRateLimitRequests || cfg.RateLimit.Window != DefaultRateLimitWindow {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "chatsts.yaml")
	content := `
server:
  addr: "127.0.0.1:9000"
token:
  secret: file-secret
  issuer: cs-client-id
  audience: https://bots.example
  lifetime: 120
client:
  mode: fixed
  id: svc
  secret: client-secret
rate_limit:
  requests: 5
  window: 30s
audit:
  enabled: true
  type: memory
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Client.Mode != ModeFixed || cfg.Client.ID != "svc" {
		t.Errorf("Client = %+v", cfg.Client)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("RateLimit.Window = %v", cfg.RateLimit.Window)
	}
	if cfg.Token.LifetimeDuration() != 2*time.Minute {
		t.Errorf("LifetimeDuration() = %v", cfg.Token.LifetimeDuration())
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Token: TokenConfig{
				Secret:   "s",
				Issuer:   "i",
				Audience: DefaultAudience,
				Lifetime: 60,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "Valid", mutate: func(*Config) {}},
		{name: "Missing Issuer", mutate: func(c *Config) { c.Token.Issuer = "" }, wantErr: true},
		{name: "Empty Audience", mutate: func(c *Config) { c.Token.Audience = "" }, wantErr: true},
		{name: "Zero Lifetime", mutate: func(c *Config) { c.Token.Lifetime = 0 }, wantErr: true},
		{name: "Strict Without Secret", mutate: func(c *Config) { c.Client.Mode = ModeStrict }, wantErr: true},
		{name: "Fixed Without Secret", mutate: func(c *Config) { c.Client.Mode = ModeFixed }, wantErr: true},
		{name: "Legacy Strict Without Secret", mutate: func(c *Config) { c.Client.ValidateSecret = true }, wantErr: true},
		{name: "Mode Case Insensitive", mutate: func(c *Config) { c.Client.Mode = " Disabled " }},
		{name: "Unknown Mode", mutate: func(c *Config) { c.Client.Mode = "psychic" }, wantErr: true},
		{name: "Negative Rate Limit", mutate: func(c *Config) { c.RateLimit.Requests = -1 }, wantErr: true},
		{name: "Rate Limit Without Window", mutate: func(c *Config) { c.RateLimit.Requests = 1 }, wantErr: true},
		{
			name:    "File Audit Without Path",
			mutate:  func(c *Config) { c.Audit = AuditConfig{Enabled: true, Type: "file"} },
			wantErr: true,
		},
		{
			name:    "Unknown Audit Type",
			mutate:  func(c *Config) { c.Audit = AuditConfig{Enabled: true, Type: "kafka"} },
			wantErr: true,
		},
		{
			name:   "Disabled Audit Ignores Type",
			mutate: func(c *Config) { c.Audit = AuditConfig{Type: "kafka"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSecret_Redacted(t *testing.T) {
	cfg := Config{
		Token:  TokenConfig{Secret: "signing-key", Issuer: "i"},
		Client: ClientConfig{Secret: "client-key"},
	}

	printed := fmt.Sprintf("%v %+v %s", cfg, cfg, cfg.Token.Secret)

	yamlOut, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	jsonOut, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}

	for name, out := range map[string]string{"fmt": printed, "yaml": string(yamlOut), "json": string(jsonOut)} {
		if strings.Contains(out, "signing-key") || strings.Contains(out, "client-key") {
			t.Errorf("%s output leaks a secret: %s", name, out)
		}
		if !strings.Contains(out, redacted) {
			t.Errorf("%s output has no redaction marker: %s", name, out)
		}
	}

	if Secret("").String() != "" {
		t.Errorf("empty secret should print empty")
	}
}

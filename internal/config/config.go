package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Verification policy names, see validation.NewVerifier.
const (
	ModeDisabled = "disabled"
	ModeAdvisory = "advisory"
	ModeStrict   = "strict"
	ModeFixed    = "fixed"
)

const (
	DefaultAddr     = ":3000"
	DefaultAudience = "https://idproxy.kore.ai/authorize"
	DefaultLifetime = 3500

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute
)

var ErrMissingSecret = errors.New("token.secret is required (set JWT_SECRET or CHATSTS_TOKEN_SECRET)")

// Secret is a string that never prints its value.
type Secret string

const redacted = "[redacted]"

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// Reveal returns the actual secret value.
func (s Secret) Reveal() string {
	return string(s)
}

func (s Secret) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Token     TokenConfig     `mapstructure:"token" yaml:"token"`
	Client    ClientConfig    `mapstructure:"client" yaml:"client"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Audit     AuditConfig     `mapstructure:"audit" yaml:"audit"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// TokenConfig holds everything the Issuer needs.
type TokenConfig struct {
	// Secret is the HS256 signing key.
	Secret Secret `mapstructure:"secret" yaml:"secret"`

	// Issuer is the iss claim, for Kore this is the client ID of the app.
	Issuer string `mapstructure:"issuer" yaml:"issuer"`

	// Audience is the default aud claim, used when the request doesn't override it.
	Audience string `mapstructure:"audience" yaml:"audience"`

	// Lifetime of issued tokens in seconds.
	Lifetime int64 `mapstructure:"lifetime" yaml:"lifetime"`
}

func (t TokenConfig) LifetimeDuration() time.Duration {
	return time.Duration(t.Lifetime) * time.Second
}

// ClientConfig selects and parameterizes the credential verification policy.
type ClientConfig struct {
	// Mode is one of disabled, advisory, strict, fixed.
	// If empty, ValidateSecret decides between strict and advisory.
	Mode string `mapstructure:"mode" yaml:"mode"`

	// ValidateSecret is the legacy VALIDATE_CLIENT_SECRET switch.
	ValidateSecret bool `mapstructure:"validate_secret" yaml:"validate_secret"`

	// ID is the expected client identifier. Defaults to the token issuer.
	ID string `mapstructure:"id" yaml:"id"`

	// Secret is the expected client secret.
	Secret Secret `mapstructure:"secret" yaml:"secret"`
}

// CORSConfig locks the STS endpoint to the chat widget origins.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// RateLimitConfig bounds requests per client IP on the STS endpoint.
type RateLimitConfig struct {
	// Requests per Window. 0 disables rate limiting.
	Requests int           `mapstructure:"requests" yaml:"requests"`
	Window   time.Duration `mapstructure:"window" yaml:"window"`
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
	Type    string `mapstructure:"type" yaml:"type"` // e.g., "file", "memory"
}

// legacyEnv maps config keys to the environment variables the first
// deployments of the STS used. They are consulted after the CHATSTS_ prefixed names.
var legacyEnv = map[string]string{
	"server.addr":            "PORT",
	"token.secret":           "JWT_SECRET",
	"token.issuer":           "JWT_ISSUER",
	"token.audience":         "JWT_AUDIENCE",
	"token.lifetime":         "JWT_EXPIRY",
	"client.validate_secret": "VALIDATE_CLIENT_SECRET",
	"client.id":              "EXPECTED_CLIENT_ID",
	"client.secret":          "EXPECTED_CLIENT_SECRET",
}

// EnvPrefix is the prefix for environment variables read by viper.
const EnvPrefix = "CHATSTS"

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("token.audience", DefaultAudience)
	v.SetDefault("token.lifetime", DefaultLifetime)

	v.SetDefault("rate_limit.requests", DefaultRateLimitRequests)
	v.SetDefault("rate_limit.window", DefaultRateLimitWindow)

	v.SetDefault("audit.type", "file")

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		_ = v.BindEnv(key, prefixed, legacy)
	}
	_ = v.BindEnv("cors.allowed_origins", EnvPrefix+"_CORS_ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	// the legacy port variable is a bare port number
	if cfg.Server.Addr != "" && !strings.Contains(cfg.Server.Addr, ":") {
		cfg.Server.Addr = ":" + cfg.Server.Addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Load reads the optional config file at path and the environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// Validate checks the config and fills derived values.
func (c *Config) Validate() error {
	if c.Token.Secret == "" {
		return ErrMissingSecret
	}
	if c.Token.Issuer == "" {
		return fmt.Errorf("token.issuer is required")
	}
	if c.Token.Audience == "" {
		return fmt.Errorf("token.audience must not be empty")
	}
	if c.Token.Lifetime <= 0 {
		return fmt.Errorf("token.lifetime must be positive, got %d", c.Token.Lifetime)
	}

	if c.Client.ID == "" {
		c.Client.ID = c.Token.Issuer
	}
	c.Client.Mode = strings.ToLower(strings.TrimSpace(c.Client.Mode))
	if c.Client.Mode == "" {
		if c.Client.ValidateSecret {
			c.Client.Mode = ModeStrict
		} else {
			c.Client.Mode = ModeAdvisory
		}
	}
	switch c.Client.Mode {
	case ModeDisabled, ModeAdvisory:
	case ModeStrict, ModeFixed:
		// without an expected secret every request would be rejected
		if c.Client.Secret == "" {
			return fmt.Errorf("client.secret is required for client.mode '%s'", c.Client.Mode)
		}
	default:
		return fmt.Errorf("unknown client.mode '%s'", c.Client.Mode)
	}

	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must not be negative")
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive when rate limiting is enabled")
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "memory":
		case "file":
			if c.Audit.Path == "" {
				return fmt.Errorf("audit.path is required for file audit logs")
			}
		default:
			return fmt.Errorf("unknown audit.type '%s'", c.Audit.Type)
		}
	}
	return nil
}

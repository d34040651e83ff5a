package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/darmiel/chatsts/internal/audit"
	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/issuer"
	"github.com/darmiel/chatsts/internal/service"
	"github.com/darmiel/chatsts/internal/validation"
	"github.com/darmiel/chatsts/pkg/client"
)

type Factory struct {
	// RemoteAddr is the address of the chatsts server to connect to.
	RemoteAddr string
}

func NewFactory() *Factory {
	return &Factory{}
}

// Remote returns the remote server address, or "" when commands should run locally.
func (f *Factory) Remote() string {
	if f.RemoteAddr != "" { // prio 1: command-line flag
		return f.RemoteAddr
	}
	return viper.GetString(RemoteAddrKey) // prio 2: config/env
}

// GetClient returns an HTTP client for remote operations.
func (f *Factory) GetClient() (*client.Client, error) {
	server := f.Remote()
	if server == "" {
		return nil, fmt.Errorf("server address not configured (use --server or set CHATSTS_REMOTE)")
	}
	return client.New(server), nil
}

// LoadConfig decodes and validates the configuration from flags, env and config file.
func (f *Factory) LoadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}

// BuildService wires the validator and issuer for cfg into a token service.
func (f *Factory) BuildService(cfg *config.Config, opts ...service.Option) (*service.TokenService, error) {
	validator, err := validation.NewValidator(cfg)
	if err != nil {
		return nil, fmt.Errorf("building validator: %w", err)
	}
	iss, err := issuer.New(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("building issuer: %w", err)
	}
	return service.NewTokenService(validator, iss, opts...), nil
}

// GetLocalService builds a token service from the local configuration.
func (f *Factory) GetLocalService() (*service.TokenService, *config.Config, error) {
	cfg, err := f.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// for local CLI operations, we don't do auditing
	svc, err := f.BuildService(cfg, service.WithAuditor(audit.NewNoopAuditor()))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

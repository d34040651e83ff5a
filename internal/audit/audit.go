package audit

import (
	"fmt"

	"github.com/darmiel/chatsts/internal/config"
	"github.com/darmiel/chatsts/internal/core"
)

// New returns the auditor described by cfg.
func New(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "memory":
		return NewInMemoryAuditor(), nil
	case "file":
		auditor, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, err
		}
		return auditor, nil
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", cfg.Type)
	}
}

package app

import (
	"fmt"
	"strings"

	"github.com/charlesng35/collegehub/pkg/crypto"
)

const (
	jwtSecretBytes     = 48
	adminPasswordBytes = 12
)

// ApplyRuntimeDefaults fills secrets that were not configured.
// It returns the generated keys so callers can log the event. Values are never part of the map,
// except the admin password, which callers must surface once to the operator.
func ApplyRuntimeDefaults(cfg *Config) (map[string]string, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	generated := make(map[string]string)

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		secret, err := crypto.GenerateToken(jwtSecretBytes)
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.Auth.JWT.Secret = secret
		generated["auth.jwt.secret"] = ""
	}

	if strings.TrimSpace(cfg.Auth.DefaultAdmin.Password) == "" {
		password, err := crypto.GenerateToken(adminPasswordBytes)
		if err != nil {
			return nil, fmt.Errorf("generate admin password: %w", err)
		}
		cfg.Auth.DefaultAdmin.Password = password
		generated["auth.default_admin.password"] = password
	}

	return generated, nil
}

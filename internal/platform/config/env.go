package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables into target,
// which must be a pointer to a struct with env tags. Every key is looked up
// under prefix, so a tag `env:"FORMAT"` with prefix "RSET" reads RSET_FORMAT.
func ParseEnv(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse %s_* env: %w", prefix, err)
	}
	return nil
}

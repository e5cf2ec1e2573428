package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("auth.access_token_ttl must be positive (got %v)", c.Auth.AccessTokenTTL)
	}

	if c.Auth.PasswordHashCost < bcrypt.MinCost || c.Auth.PasswordHashCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.password_hash_cost must be between %d and %d (got %d)",
			bcrypt.MinCost, bcrypt.MaxCost, c.Auth.PasswordHashCost)
	}

	if c.Recovery.TokenTTL <= 0 {
		return fmt.Errorf("recovery.token_ttl must be positive (got %v)", c.Recovery.TokenTTL)
	}

	if c.Recovery.RecoverURI == "" {
		return fmt.Errorf("recovery.recover_uri must be set")
	}

	if c.Mail.Enabled() && c.Mail.Port <= 0 {
		return fmt.Errorf("mail.port must be positive (got %d)", c.Mail.Port)
	}

	if c.Server.RateLimitPerMin < 0 {
		return fmt.Errorf("server.rate_limit_per_min must not be negative (got %d)", c.Server.RateLimitPerMin)
	}

	return nil
}

package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "DB_DRIVER", "JWT_ACCESS_TTL", "RECURRING_RUN_HOUR", "RECURRING_SCHEDULER_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected default driver postgres, got %s", cfg.DBDriver)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected 15m access TTL, got %s", cfg.AccessTokenTTL)
	}
	if cfg.RecurringRunHour != 2 {
		t.Errorf("expected run hour 2, got %d", cfg.RecurringRunHour)
	}
	if !cfg.SchedulerEnabled {
		t.Error("expected scheduler enabled by default")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "soon")
	t.Setenv("RECURRING_SCHEDULER_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("expected fallback TTL, got %s", cfg.AccessTokenTTL)
	}
	if !cfg.SchedulerEnabled {
		t.Error("expected fallback to enabled")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{Env: "development", DBDriver: "sqlite", JWTSecret: "s", RecurringRunHour: 2}
	}

	t.Run("valid", func(t *testing.T) {
		if err := base().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("production_requires_secret", func(t *testing.T) {
		c := base()
		c.Env = "production"
		c.JWTSecret = devJWTSecret
		if err := c.Validate(); err == nil {
			t.Error("expected error for dev secret in production")
		}
	})

	t.Run("run_hour_out_of_range", func(t *testing.T) {
		c := base()
		c.RecurringRunHour = 24
		if err := c.Validate(); err == nil {
			t.Error("expected error for hour 24")
		}
	})

	t.Run("unknown_driver", func(t *testing.T) {
		c := base()
		c.DBDriver = "mysql"
		if err := c.Validate(); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})
}

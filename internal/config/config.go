package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/verdict-finance/verdict/internal/model"
)

// Config holds all process-wide settings. It is loaded once at startup,
// validated, and passed into the pipeline; nothing mutates it afterwards.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Scoring  ScoringConfig
	Behavior BehaviorConfig
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// AuthConfig configures session tokens.
type AuthConfig struct {
	JWTSecret   string
	TokenExpiry time.Duration
}

// ScoringConfig configures the credit scoring model.
type ScoringConfig struct {
	// ModelPath points at the JSON model artifact.
	ModelPath string
	// AllowPlaceholder substitutes a synthetic placeholder model when the
	// artifact is missing instead of failing startup. Never enable this in
	// production; it exists so development environments can run without a
	// trained artifact.
	AllowPlaceholder bool
}

// BehaviorConfig configures the transaction behavior analyzer.
type BehaviorConfig struct {
	// Thresholds maps each category to its spending limit as a fraction
	// of monthly income.
	Thresholds map[model.Category]float64
}

// Load builds a Config from Viper, applying defaults for anything unset.
func Load() (*Config, error) {
	setDefaults()

	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(viper.GetString("database.path")),
		},
		Server: ServerConfig{
			Addr:        viper.GetString("server.addr"),
			CORSOrigins: viper.GetStringSlice("server.cors_origins"),
		},
		Auth: AuthConfig{
			JWTSecret:   viper.GetString("auth.jwt_secret"),
			TokenExpiry: viper.GetDuration("auth.token_expiry"),
		},
		Scoring: ScoringConfig{
			ModelPath:        ExpandPath(viper.GetString("scoring.model_path")),
			AllowPlaceholder: viper.GetBool("scoring.allow_placeholder"),
		},
		Behavior: BehaviorConfig{
			Thresholds: loadThresholds(),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.path", "~/.local/share/verdict/verdict.db")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	viper.SetDefault("auth.token_expiry", 24*time.Hour)
	viper.SetDefault("scoring.model_path", "~/.local/share/verdict/model.json")
	viper.SetDefault("scoring.allow_placeholder", false)

	for cat, threshold := range model.DefaultThresholds {
		viper.SetDefault(fmt.Sprintf("behavior.thresholds.%s", cat), threshold)
	}
}

func loadThresholds() map[model.Category]float64 {
	thresholds := make(map[model.Category]float64, len(model.Categories))
	for _, cat := range model.Categories {
		thresholds[cat] = viper.GetFloat64(fmt.Sprintf("behavior.thresholds.%s", cat))
	}
	return thresholds
}

func (c *Config) validate() error {
	for _, cat := range model.Categories {
		threshold, ok := c.Behavior.Thresholds[cat]
		if !ok {
			return fmt.Errorf("missing behavior threshold for category %q", cat)
		}
		if threshold <= 0 {
			return fmt.Errorf("behavior threshold for category %q must be positive, got %v", cat, threshold)
		}
	}
	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("auth token expiry must be positive, got %v", c.Auth.TokenExpiry)
	}
	return nil
}

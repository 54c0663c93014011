package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// GoogleConfig holds the Google OAuth client and endpoint settings.
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"GOOGLE_REDIRECT_URI"`
	AuthURL      string `env:"GOOGLE_AUTH_URL"     envDefault:"https://accounts.google.com/o/oauth2/v2/auth"`
	TokenURL     string `env:"GOOGLE_TOKEN_URL"    envDefault:"https://oauth2.googleapis.com/token"`
	UserInfoURL  string `env:"GOOGLE_USERINFO_URL" envDefault:"https://www.googleapis.com/oauth2/v2/userinfo"`
}

// LoadGoogleConfig reads GoogleConfig from the environment.
func LoadGoogleConfig() (GoogleConfig, error) {
	var cfg GoogleConfig
	if err := env.Parse(&cfg); err != nil {
		return GoogleConfig{}, fmt.Errorf("parse google env: %w", err)
	}
	cfg.ClientID = strings.TrimSpace(cfg.ClientID)
	cfg.ClientSecret = strings.TrimSpace(cfg.ClientSecret)
	cfg.RedirectURI = strings.TrimSpace(cfg.RedirectURI)
	return cfg, nil
}

// Enabled reports whether Google sign-in can be offered.
func (c GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

package server

import (
	"fmt"
	"os"
	"strings"

	"github.com/quaylabs/exchangekit/internal/exchange"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	AdminToken  string
	SealSecret  string
	DBPath      string
	PrefsPath   string
	ListenAddr  string
	ClientID    string
	OAuthHost   string
	APIHost     string
	RedirectURI string
	CORSOrigins []string
}

// LoadConfig loads server configuration from environment variables.
func LoadConfig() (*Config, error) {
	adminToken := os.Getenv("EXCHANGEKIT_ADMIN_TOKEN")
	if adminToken == "" {
		return nil, fmt.Errorf("EXCHANGEKIT_ADMIN_TOKEN is required")
	}
	if len(adminToken) < 16 {
		return nil, fmt.Errorf("EXCHANGEKIT_ADMIN_TOKEN must be at least 16 characters")
	}

	sealSecret := os.Getenv("EXCHANGEKIT_SEAL_SECRET")
	if sealSecret == "" {
		return nil, fmt.Errorf("EXCHANGEKIT_SEAL_SECRET is required")
	}

	clientID := os.Getenv("EXCHANGEKIT_CLIENT_ID")
	if clientID == "" {
		return nil, fmt.Errorf("EXCHANGEKIT_CLIENT_ID is required")
	}

	dbPath := os.Getenv("EXCHANGEKIT_DB_PATH")
	if dbPath == "" {
		dbPath = "publishers.db"
	}

	prefsPath := os.Getenv("EXCHANGEKIT_PREFS_PATH")
	if prefsPath == "" {
		prefsPath = "prefs.db"
	}

	listenAddr := os.Getenv("EXCHANGEKIT_LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	var corsOrigins []string
	if v := os.Getenv("EXCHANGEKIT_CORS_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		AdminToken:  adminToken,
		SealSecret:  sealSecret,
		DBPath:      dbPath,
		PrefsPath:   prefsPath,
		ListenAddr:  listenAddr,
		ClientID:    clientID,
		OAuthHost:   os.Getenv("EXCHANGEKIT_OAUTH_HOST"),
		APIHost:     os.Getenv("EXCHANGEKIT_API_HOST"),
		RedirectURI: os.Getenv("EXCHANGEKIT_REDIRECT_URI"),
		CORSOrigins: corsOrigins,
	}, nil
}

// ExchangeConfig merges the env overrides over the production exchange
// defaults.
func (c *Config) ExchangeConfig() exchange.Config {
	ec := exchange.DefaultConfig(c.ClientID)
	if c.OAuthHost != "" {
		ec.OAuthHost = c.OAuthHost
	}
	if c.APIHost != "" {
		ec.APIHost = c.APIHost
	}
	if c.RedirectURI != "" {
		ec.RedirectURI = c.RedirectURI
	}
	return ec
}

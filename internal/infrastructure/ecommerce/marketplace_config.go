package ecommerce

import (
	"errors"
	"strings"
	"time"

	"github.com/shipdesk/backend/internal/domain/marketplace"
)

const (
	// DefaultAcceptHeader is the versioned media type of the retailer API
	DefaultAcceptHeader = "application/vnd.retailer.v10+json"
	// DefaultTimeout bounds every outbound marketplace call
	DefaultTimeout = 10 * time.Second
)

// Errors for marketplace configuration
var (
	ErrMarketplaceConfigMissingAuthURL = errors.New("marketplace: auth URL is required")
	ErrMarketplaceConfigMissingAPIURL  = errors.New("marketplace: API base URL is required")
)

// Credentials are the optional client credentials sent with a token request
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// MarketplaceConfig holds configuration for the marketplace retailer API
type MarketplaceConfig struct {
	// AuthURL is the token endpoint
	AuthURL string
	// APIBaseURL is the retailer API root, without trailing slash
	APIBaseURL string
	// AcceptHeader is the media type sent on API calls
	AcceptHeader string
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration
	// RateLimitRPS and RateLimitBurst shape outbound API traffic, 0 disables limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Credentials holds per-account client credentials; accounts without an entry
	// request tokens with the account name only
	Credentials map[marketplace.Account]Credentials
}

// NewMarketplaceConfig creates a new marketplace configuration with defaults
func NewMarketplaceConfig(authURL, apiBaseURL string) *MarketplaceConfig {
	return &MarketplaceConfig{
		AuthURL:      authURL,
		APIBaseURL:   apiBaseURL,
		AcceptHeader: DefaultAcceptHeader,
		Timeout:      DefaultTimeout,
		Credentials:  make(map[marketplace.Account]Credentials),
	}
}

// Validate validates the configuration and fills defaults
func (c *MarketplaceConfig) Validate() error {
	if strings.TrimSpace(c.AuthURL) == "" {
		return ErrMarketplaceConfigMissingAuthURL
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMarketplaceConfigMissingAPIURL
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.AcceptHeader == "" {
		c.AcceptHeader = DefaultAcceptHeader
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 1
	}
	if c.Credentials == nil {
		c.Credentials = make(map[marketplace.Account]Credentials)
	}
	return nil
}

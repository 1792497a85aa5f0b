package emp

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config contains the Genesis gateway credentials for one terminal
type Config struct {
	// Endpoint is the gateway base URL, e.g. https://staging.gate.emerchantpay.net
	Endpoint string
	// TerminalToken selects the SDD terminal
	TerminalToken string
	// Username and Password are the API basic-auth credentials
	Username string
	Password string
	// Timeout bounds every HTTP call (default 30s)
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrMissingEndpoint      = errors.New("emp: missing endpoint")
	ErrInvalidEndpoint      = errors.New("emp: endpoint must be an absolute http(s) URL")
	ErrMissingTerminalToken = errors.New("emp: missing terminal token")
	ErrMissingUsername      = errors.New("emp: missing username")
	ErrMissingPassword      = errors.New("emp: missing password")
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrMissingEndpoint
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}
	if c.TerminalToken == "" {
		return ErrMissingTerminalToken
	}
	if c.Username == "" {
		return ErrMissingUsername
	}
	if c.Password == "" {
		return ErrMissingPassword
	}
	return nil
}

func (c *Config) processURL() string {
	return strings.TrimRight(c.Endpoint, "/") + "/process/" + c.TerminalToken + "/"
}

func (c *Config) reconcileURL() string {
	return strings.TrimRight(c.Endpoint, "/") + "/reconcile/" + c.TerminalToken + "/"
}

package transport

import "time"

const (
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is the number of retries after the first attempt.
	DefaultRetries = 3
)

// Config is the shared transport configuration of one SDK client.
type Config struct {
	// BaseURL is the backend address, e.g. https://api.example.com.
	BaseURL string `mapstructure:"base_url"`
	// APIKey is sent as X-API-Key on every request.
	APIKey string `mapstructure:"api_key"`
	// Timeout bounds each attempt. Zero means DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout"`
	// Retries is the number of retries after the first attempt. Zero means
	// DefaultRetries; use a negative value to disable retries.
	Retries int `mapstructure:"retries"`
	// Debug enables before/after request log lines.
	Debug bool `mapstructure:"debug"`
	// RateLimit caps attempts per second. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	// RateBurst is the limiter burst. Defaults to 1 when RateLimit is set.
	RateBurst int `mapstructure:"rate_burst"`
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch {
	case c.Retries == 0:
		c.Retries = DefaultRetries
	case c.Retries < 0:
		c.Retries = 0
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}

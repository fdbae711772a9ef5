package ratelimit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one method and path. A Path ending
// in "/" matches every path under it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

const (
	DefaultParseLimit  = 30
	DefaultParseWindow = time.Hour
	parseBurst         = 5
)

// LoadConfig reads the RATE_LIMIT_* variables. Malformed values are errors
// rather than silently replaced by defaults.
func LoadConfig() (*Config, error) {
	env := &envReader{}

	cfg := &Config{Enabled: env.boolean("RATE_LIMIT_ENABLED", true)}
	if !cfg.Enabled {
		return cfg, env.err()
	}

	cfg.DefaultLimit = env.positive("RATE_LIMIT_DEFAULT_LIMIT", 1000)
	cfg.DefaultWindow = env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute)
	cfg.CleanupInterval = env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
	cfg.IdleTTL = env.duration("RATE_LIMIT_IDLE_TTL", time.Hour)
	cfg.Whitelist = clientSet(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = clientSet(os.Getenv("RATE_LIMIT_BLACKLIST"))
	cfg.EndpointConfigs = endpointConfigs(
		env.positive("RATE_LIMIT_PARSE_LIMIT", DefaultParseLimit),
		env.duration("RATE_LIMIT_PARSE_WINDOW", DefaultParseWindow),
	)

	if err := env.err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultEndpointConfigs returns the per-endpoint limits with the default
// CV parsing tier.
func DefaultEndpointConfigs() []EndpointConfig {
	return endpointConfigs(DefaultParseLimit, DefaultParseWindow)
}

// endpointConfigs lists the limited routes. parse-cv and import-cv share the
// strictest tier; reads use the default limit and /health is never limited.
func endpointConfigs(parseLimit int, parseWindow time.Duration) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/parse-cv", Method: "POST", Limit: parseLimit, Window: parseWindow, Burst: parseBurst},
		{Path: "/api/import-cv", Method: "POST", Limit: parseLimit, Window: parseWindow, Burst: parseBurst},
		{Path: "/api/auth/signin", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/api/auth/signup", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
		{Path: "/api/profiles", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/api/admin/users/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// envReader parses variables and remembers every malformed one.
type envReader struct {
	errs []error
}

func (e *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (e *envReader) fail(key, value string, err error) {
	e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (e *envReader) boolean(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return b
}

func (e *envReader) positive(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err == nil && n < 1 {
		err = errors.New("must be at least 1")
	}
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return n
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err == nil && d <= 0 {
		err = errors.New("must be positive")
	}
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return d
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

// clientSet parses a comma-separated list of client addresses.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = true
		}
	}
	return set
}

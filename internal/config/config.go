// Package config loads service and CLI configuration from the environment
// and optional JSON files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/skills-dossier/internal/llm"
	"github.com/jonathan/skills-dossier/internal/logger"
	"github.com/jonathan/skills-dossier/internal/parsing"
)

// Defaults applied by Load when a variable is unset.
const (
	DefaultPort        = 4000
	DefaultCORSOrigin  = "http://localhost:5173"
	DefaultMaxUploadMB = 10
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// AppConfig is the resolved runtime configuration of the service and CLI.
// Fields carry JSON tags so a file passed with --config can override them.
type AppConfig struct {
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
	CORSOrigin  string `json:"cors_origin,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`
	LogFormat   string `json:"log_format,omitempty"`
	MaxUploadMB int    `json:"max_upload_mb,omitempty"`

	// Remote CV parser
	ParserProvider string        `json:"cv_parser_provider,omitempty"` // openai or gemini
	OpenAIAPIKey   string        `json:"openai_api_key,omitempty"`
	OpenAIModel    string        `json:"openai_cv_model,omitempty"`
	OpenAIBaseURL  string        `json:"openai_base_url,omitempty"`
	GeminiAPIKey   string        `json:"gemini_api_key,omitempty"`
	GeminiModel    string        `json:"gemini_cv_model,omitempty"`
	ParserTimeout  time.Duration `json:"-"`

	// CLI
	APIURL   string `json:"api_url,omitempty"`   // backend used by import-cv
	APIToken string `json:"api_token,omitempty"` // bearer token for the backend
}

// Load reads AppConfig from the environment, applying defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           DefaultPort,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		CORSOrigin:     envString("CORS_ORIGIN", DefaultCORSOrigin),
		LogLevel:       envString("LOG_LEVEL", DefaultLogLevel),
		LogFormat:      envString("LOG_FORMAT", DefaultLogFormat),
		MaxUploadMB:    DefaultMaxUploadMB,
		ParserProvider: strings.ToLower(envString("CV_PARSER_PROVIDER", string(llm.ProviderOpenAI))),
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envString("OPENAI_CV_MODEL", llm.DefaultOpenAIModel),
		OpenAIBaseURL:  envString("OPENAI_BASE_URL", llm.DefaultOpenAIBaseURL),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    envString("GEMINI_CV_MODEL", llm.DefaultGeminiModel),
		ParserTimeout:  llm.DefaultTimeout,
		APIURL:         os.Getenv("DOSSIER_API_URL"),
		APIToken:       os.Getenv("DOSSIER_API_TOKEN"),
	}

	var err error
	if cfg.Port, err = envInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.MaxUploadMB, err = envInt("MAX_UPLOAD_MB", DefaultMaxUploadMB); err != nil {
		return nil, err
	}
	if v := os.Getenv("CV_PARSER_TIMEOUT"); v != "" {
		if cfg.ParserTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid CV_PARSER_TIMEOUT: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads overrides from a JSON file. Unset keys stay zero.
func LoadFile(path string) (*AppConfig, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges. DATABASE_URL is checked by the commands
// that need it.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port out of range: %d", c.Port)
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config error: max upload size must be at least 1 MB")
	}
	if c.ParserTimeout < 0 {
		return fmt.Errorf("config error: parser timeout must be non-negative")
	}
	switch llm.Provider(c.ParserProvider) {
	case llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("config error: unknown CV parser provider %q", c.ParserProvider)
	}
	return nil
}

// MergeWithDefaults returns a copy of c with zero fields filled from defaults.
// A file loaded with LoadFile is merged over the environment this way.
func (c *AppConfig) MergeWithDefaults(defaults AppConfig) AppConfig {
	result := *c

	for _, f := range []struct {
		dst *string
		src string
	}{
		{&result.DatabaseURL, defaults.DatabaseURL},
		{&result.CORSOrigin, defaults.CORSOrigin},
		{&result.LogLevel, defaults.LogLevel},
		{&result.LogFormat, defaults.LogFormat},
		{&result.ParserProvider, defaults.ParserProvider},
		{&result.OpenAIAPIKey, defaults.OpenAIAPIKey},
		{&result.OpenAIModel, defaults.OpenAIModel},
		{&result.OpenAIBaseURL, defaults.OpenAIBaseURL},
		{&result.GeminiAPIKey, defaults.GeminiAPIKey},
		{&result.GeminiModel, defaults.GeminiModel},
		{&result.APIURL, defaults.APIURL},
		{&result.APIToken, defaults.APIToken},
	} {
		if *f.dst == "" {
			*f.dst = f.src
		}
	}

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.ParserTimeout == 0 {
		result.ParserTimeout = defaults.ParserTimeout
	}
	return result
}

// credential returns the API key of the selected provider.
func (c *AppConfig) credential() string {
	if llm.Provider(c.ParserProvider) == llm.ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Parser returns the strategy settings for the CV parsing orchestrator.
func (c *AppConfig) Parser() parsing.ParserConfig {
	cfg := parsing.ParserConfig{
		Provider:   c.ParserProvider,
		Credential: strings.TrimSpace(c.credential()),
		Model:      c.OpenAIModel,
		Endpoint:   c.OpenAIBaseURL,
	}
	if llm.Provider(c.ParserProvider) == llm.ProviderGemini {
		cfg.Model = c.GeminiModel
		cfg.Endpoint = ""
	}
	return cfg
}

// LLM returns the client settings for the remote parser.
func (c *AppConfig) LLM() *llm.Config {
	p := c.Parser()
	return &llm.Config{
		Provider:    llm.Provider(p.Provider),
		Model:       p.Model,
		BaseURL:     p.Endpoint,
		APIKey:      p.Credential,
		Temperature: llm.DefaultTemperature,
		Timeout:     c.ParserTimeout,
	}
}

// Logger returns the logger settings.
func (c *AppConfig) Logger() logger.Config {
	return logger.Config{Level: c.LogLevel, Format: c.LogFormat}
}

// MaxUploadBytes is the multipart size limit.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

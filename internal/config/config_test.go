package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/skills-dossier/internal/llm"
)

// clearEnv unsets every variable Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "CORS_ORIGIN", "LOG_LEVEL", "LOG_FORMAT", "MAX_UPLOAD_MB",
		"CV_PARSER_PROVIDER", "OPENAI_API_KEY", "OPENAI_CV_MODEL", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_CV_MODEL", "CV_PARSER_TIMEOUT", "DOSSIER_API_URL", "DOSSIER_API_TOKEN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultCORSOrigin, cfg.CORSOrigin)
	assert.Equal(t, "openai", cfg.ParserProvider)
	assert.Equal(t, llm.DefaultOpenAIModel, cfg.OpenAIModel)
	assert.Equal(t, llm.DefaultTimeout, cfg.ParserTimeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.False(t, cfg.Parser().Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CV_PARSER_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", " g-key ")
	t.Setenv("OPENAI_API_KEY", "o-key")
	t.Setenv("CV_PARSER_TIMEOUT", "15s")
	t.Setenv("MAX_UPLOAD_MB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 15*time.Second, cfg.ParserTimeout)

	p := cfg.Parser()
	assert.Equal(t, "gemini", p.Provider)
	assert.Equal(t, "g-key", p.Credential)
	assert.Equal(t, llm.DefaultGeminiModel, p.Model)
	assert.True(t, p.Enabled())

	l := cfg.LLM()
	assert.Equal(t, llm.ProviderGemini, l.Provider)
	assert.Equal(t, "g-key", l.APIKey)
	assert.Equal(t, 15*time.Second, l.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "http"},
		{"PORT", "70000"},
		{"MAX_UPLOAD_MB", "0"},
		{"CV_PARSER_TIMEOUT", "forever"},
		{"CV_PARSER_PROVIDER", "mistral"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParser_OpenAICredential(t *testing.T) {
	cfg := &AppConfig{ParserProvider: "openai", OpenAIAPIKey: "o-key", GeminiAPIKey: "g-key", OpenAIBaseURL: "http://local"}

	p := cfg.Parser()
	assert.Equal(t, "o-key", p.Credential)
	assert.Equal(t, "http://local", p.Endpoint)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dossier.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api_url": "http://localhost:4000", "log_format": "pretty"}`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", cfg.APIURL)
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile("")
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	file := &AppConfig{APIURL: "http://file", LogFormat: "pretty"}
	env := AppConfig{Port: 4000, APIURL: "http://env", LogLevel: "debug", LogFormat: "json", MaxUploadMB: 10}

	merged := file.MergeWithDefaults(env)

	assert.Equal(t, "http://file", merged.APIURL)
	assert.Equal(t, "pretty", merged.LogFormat)
	assert.Equal(t, "debug", merged.LogLevel)
	assert.Equal(t, 4000, merged.Port)
	assert.Equal(t, 10, merged.MaxUploadMB)
}

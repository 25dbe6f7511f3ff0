package topicquiz

import (
	"os"
	"strings"
)

// Config holds the runtime settings read from the environment
type Config struct {
	APIKey        string
	Model         string
	BaseURL       string
	Port          string
	SessionSecret string
	LogMode       string
	Verbose       bool
	LLMLogDir     string // empty disables transcripts
	DBPath        string // empty disables the quiz archive
}

// ConfigFromEnv reads the configuration from environment variables
func ConfigFromEnv() Config {
	return Config{
		APIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Model:         envOr("OPENAI_MODEL", DefaultModel),
		BaseURL:       envOr("OPENAI_BASE_URL", ""),
		Port:          envOr("PORT", "8180"),
		SessionSecret: envOr("SESSION_SECRET", "change-me-in-production"),
		LogMode:       envOr("LOG_MODE", "dev"),
		Verbose:       envBool("VERBOSE", false),
		LLMLogDir:     envOr("LLM_LOG_DIR", ""),
		DBPath:        envOr("QUIZ_DB_PATH", ""),
	}
}

// Configured reports whether an API credential is present
func (c Config) Configured() bool {
	return c.APIKey != ""
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(k)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port          string
	AllowedOrigin string
	FrontendURL   string

	// AI provider
	OpenAIAPIKey      string
	OpenAIAPIURL      string
	Model             string
	OpenAIMaxTokens   int
	OpenAITemperature float64
	OpenAITimeout     time.Duration

	// Jira
	JiraBaseURL        string
	JiraEmail          string
	JiraAPIToken       string
	JiraDefaultProject string
	JiraTimeout        time.Duration

	// Atlassian OAuth (alternative to API-token auth)
	AtlassianClientID     string
	AtlassianClientSecret string
	AtlassianRedirectURL  string
	AtlassianScopes       []string
	JiraTokenFile         string

	// Database
	DatabaseURL string

	// Optional YAML catalog overriding the built-in templates
	TemplateCatalogFile string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:          getEnvDefault("PORT", "8080"),
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		FrontendURL:   getEnvDefault("FRONTEND_URL", "http://localhost:5173"),

		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIURL:      getEnvDefault("OPENAI_API_URL", "https://api.openai.com/v1"),
		Model:             getEnvDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIMaxTokens:   getEnvIntDefault("OPENAI_MAX_TOKENS", 1000),
		OpenAITemperature: getEnvFloatDefault("OPENAI_TEMPERATURE", 0.7),
		OpenAITimeout:     getEnvDurationDefault("OPENAI_TIMEOUT", 30*time.Second),

		JiraBaseURL:        os.Getenv("JIRA_BASE_URL"),
		JiraEmail:          os.Getenv("JIRA_EMAIL"),
		JiraAPIToken:       os.Getenv("JIRA_API_TOKEN"),
		JiraDefaultProject: getEnvDefault("JIRA_DEFAULT_PROJECT", "PROJ"),
		JiraTimeout:        getEnvDurationDefault("JIRA_TIMEOUT", 30*time.Second),

		AtlassianClientID:     os.Getenv("ATLASSIAN_CLIENT_ID"),
		AtlassianClientSecret: os.Getenv("ATLASSIAN_CLIENT_SECRET"),
		AtlassianRedirectURL:  getEnvDefault("ATLASSIAN_REDIRECT_URL", "http://localhost:8080/api/jira/callback"),
		AtlassianScopes:       getEnvListDefault("ATLASSIAN_OAUTH_SCOPES", []string{"read:jira-user", "read:jira-work", "write:jira-work"}),
		JiraTokenFile:         getEnvDefault("JIRA_TOKEN_FILE", "data/jira_token.json"),

		DatabaseURL: os.Getenv("DB_URL"),

		TemplateCatalogFile: os.Getenv("TEMPLATE_CATALOG_FILE"),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is not set; card analysis will use the local heuristic")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloatDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

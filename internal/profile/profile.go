package profile

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Unified LLM configuration (OpenAI-compatible protocol)
	// All providers (gemini, openai, deepseek, openrouter, ollama) use the same config
	LLMProvider      string // Provider identifier: gemini, openai, deepseek, openrouter, ollama
	LLMAPIKey        string // Unified LLM API key
	LLMBaseURL       string // Unified LLM base URL (optional, has default per provider)
	LLMModel         string // Primary model tried first for summary generation
	LLMFallbackModel string // Model tried when the primary model fails (optional)
	LLMTimeout       int    // LLM request timeout in seconds (default: 30)

	// Object storage configuration (S3 or any S3-compatible store)
	StorageBucket    string
	StorageRegion    string
	StorageEndpoint  string // Custom endpoint for S3-compatible stores (MinIO, R2); empty for AWS
	StorageAccessKey string
	StorageSecretKey string
	StorageBaseURL   string // Public base URL under which uploaded objects are served
	StorageKeyPrefix string // Namespace prefix for every object key (default: pwalib)

	// HTTP surface
	CORSOrigins   string // Comma-separated allowed origins; "*" allows any
	UploadLimitMB int    // Request body cap applied to all routes

	Mode    string
	Addr    string
	Port    int
	Version string
}

// Provider default configurations for LLM.
// Used when LLM_BASE_URL / LLM_MODEL are not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL       string
	Model         string
	FallbackModel string
}{
	"gemini": {
		BaseURL:       "https://generativelanguage.googleapis.com/v1beta/openai",
		Model:         "gemini-2.5-flash",
		FallbackModel: "gemini-2.0-flash",
	},
	"openai": {
		BaseURL:       "https://api.openai.com/v1",
		Model:         "gpt-4o-mini",
		FallbackModel: "gpt-4o",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "deepseek/deepseek-chat",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if an LLM API key is configured.
// Ollama runs without a key, so the provider alone is enough there.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != "" || p.LLMProvider == "ollama"
}

// IsStorageEnabled returns true if an object-store bucket is configured.
func (p *Profile) IsStorageEnabled() bool {
	return p.StorageBucket != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv loads configuration from environment variables.
func (p *Profile) FromEnv() {
	// Unified LLM configuration
	p.LLMProvider = getEnvOrDefault("PWALIB_AI_LLM_PROVIDER", "gemini")
	p.LLMAPIKey = getEnvOrDefault("PWALIB_AI_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("PWALIB_AI_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("PWALIB_AI_LLM_MODEL", "")
	p.LLMFallbackModel = getEnvOrDefault("PWALIB_AI_LLM_FALLBACK_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("PWALIB_AI_LLM_TIMEOUT_SECONDS", 30)

	if p.LLMProvider != "" {
		if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
			slog.Warn("Unknown LLM provider, using default: gemini", "provider", p.LLMProvider)
			p.LLMProvider = "gemini"
		}
	}
	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
		if p.LLMFallbackModel == "" {
			p.LLMFallbackModel = defaults.FallbackModel
		}
	}

	// Object storage configuration
	p.StorageBucket = getEnvOrDefault("PWALIB_STORAGE_BUCKET", "")
	p.StorageRegion = getEnvOrDefault("PWALIB_STORAGE_REGION", "us-east-1")
	p.StorageEndpoint = getEnvOrDefault("PWALIB_STORAGE_ENDPOINT", "")
	p.StorageAccessKey = getEnvOrDefault("PWALIB_STORAGE_ACCESS_KEY", "")
	p.StorageSecretKey = getEnvOrDefault("PWALIB_STORAGE_SECRET_KEY", "")
	p.StorageBaseURL = getEnvOrDefault("PWALIB_STORAGE_BASE_URL", "")
	p.StorageKeyPrefix = getEnvOrDefault("PWALIB_STORAGE_KEY_PREFIX", "pwalib")

	// HTTP surface
	p.CORSOrigins = getEnvOrDefault("PWALIB_CORS_ORIGINS", "*")
	p.UploadLimitMB = getEnvOrDefaultInt("PWALIB_UPLOAD_LIMIT_MB", 25)
}

// CORSOriginList splits the configured origins into a slice for middleware use.
func (p *Profile) CORSOriginList() []string {
	parts := strings.Split(p.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	if p.UploadLimitMB <= 0 {
		p.UploadLimitMB = 25
	}

	if p.IsStorageEnabled() {
		if p.StorageBaseURL == "" {
			// Default to the canonical AWS virtual-hosted URL; S3-compatible
			// stores must set PWALIB_STORAGE_BASE_URL explicitly.
			if p.StorageEndpoint != "" {
				return errors.New("PWALIB_STORAGE_BASE_URL is required when a custom storage endpoint is set")
			}
			p.StorageBaseURL = "https://" + p.StorageBucket + ".s3." + p.StorageRegion + ".amazonaws.com"
		}
		parsed, err := url.Parse(p.StorageBaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errors.Errorf("invalid storage base URL %q", p.StorageBaseURL)
		}
		p.StorageBaseURL = strings.TrimRight(p.StorageBaseURL, "/")
	}

	p.StorageKeyPrefix = strings.Trim(p.StorageKeyPrefix, "/")

	return nil
}

// Package profile holds the process configuration assembled from
// flags and environment variables.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the main server.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol). The same service
	// handles classification, translation, and answer synthesis.
	LLMProvider string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMModel    string
	LLMTimeout  int // request timeout in seconds

	// Embedding configuration
	EmbeddingProvider   string
	EmbeddingModel      string
	EmbeddingAPIKey     string
	EmbeddingBaseURL    string
	EmbeddingDimensions int

	// Knowledge dataset
	DatasetPath string

	// Support contact rendered into escalation templates
	ContactPhone string
	ContactEmail string

	// Sensitive-query trigger keywords (comma-separated env override).
	// Empty means the built-in defaults.
	SensitiveTriggers []string

	// Chat platform credentials (optional)
	TelegramBotToken   string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string

	// Server / storage
	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string // sqlite, postgres
	DSN     string
	Version string
}

// Provider default configurations for the LLM.
// Used when IDALS_AI_LLM_BASE_URL is not explicitly set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-7B-Instruct",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if the LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
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
	p.LLMProvider = getEnvOrDefault("IDALS_AI_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("IDALS_AI_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("IDALS_AI_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("IDALS_AI_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("IDALS_AI_LLM_TIMEOUT_SECONDS", 60)

	if defaults, ok := llmProviderDefaults[p.LLMProvider]; ok {
		if p.LLMBaseURL == "" {
			p.LLMBaseURL = defaults.BaseURL
		}
		if p.LLMModel == "" {
			p.LLMModel = defaults.Model
		}
	}

	p.EmbeddingProvider = getEnvOrDefault("IDALS_AI_EMBEDDING_PROVIDER", "openai")
	p.EmbeddingModel = getEnvOrDefault("IDALS_AI_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingAPIKey = getEnvOrDefault("IDALS_AI_EMBEDDING_API_KEY", p.LLMAPIKey)
	p.EmbeddingBaseURL = getEnvOrDefault("IDALS_AI_EMBEDDING_BASE_URL", "")
	p.EmbeddingDimensions = getEnvOrDefaultInt("IDALS_AI_EMBEDDING_DIMENSIONS", 1024)

	p.ContactPhone = getEnvOrDefault("IDALS_CONTACT_PHONE", "")
	p.ContactEmail = getEnvOrDefault("IDALS_CONTACT_EMAIL", "")

	if triggers := os.Getenv("IDALS_SENSITIVE_TRIGGERS"); triggers != "" {
		for _, t := range strings.Split(triggers, ",") {
			if t = strings.TrimSpace(t); t != "" {
				p.SensitiveTriggers = append(p.SensitiveTriggers, t)
			}
		}
	}

	p.TelegramBotToken = getEnvOrDefault("IDALS_TELEGRAM_BOT_TOKEN", "")
	p.TwilioAccountSID = getEnvOrDefault("TWILIO_ACCOUNT_SID", "")
	p.TwilioAuthToken = getEnvOrDefault("TWILIO_AUTH_TOKEN", "")
	p.TwilioWhatsAppFrom = getEnvOrDefault("TWILIO_WHATSAPP_FROM", "")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies.
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes and verifies the profile. The knowledge dataset
// must exist: without it no retrieval-dependent intent can be served,
// and the process refuses to start.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		p.Data = "/var/opt/idals-agent"
	}
	if p.Data == "" {
		p.Data = "."
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		return err
	}
	p.Data = dataDir

	if p.Driver != "sqlite" && p.Driver != "postgres" {
		return errors.Errorf("unsupported database driver %q", p.Driver)
	}
	if p.Driver == "sqlite" && p.DSN == "" {
		p.DSN = filepath.Join(p.Data, fmt.Sprintf("idals_%s.db", p.Mode))
	}
	if p.Driver == "postgres" && p.DSN == "" {
		return errors.New("dsn is required for postgres driver")
	}

	if p.DatasetPath == "" {
		p.DatasetPath = filepath.Join(p.Data, "idals_qna.csv")
	}
	if _, err := os.Stat(p.DatasetPath); err != nil {
		return errors.Wrapf(err, "knowledge dataset not accessible at %s", p.DatasetPath)
	}

	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cv-analyser/pkg/utils"
)

// ProviderConfig holds the defaults for one upstream language-model service
type ProviderConfig struct {
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// Config represents the application configuration
type Config struct {
	Server struct {
		Port           int           `yaml:"port" default:"8000"`
		Host           string        `yaml:"host" default:"0.0.0.0"`
		ReadTimeout    time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout   time.Duration `yaml:"write_timeout" default:"180s"`
		IdleTimeout    time.Duration `yaml:"idle_timeout" default:"60s"`
		RequestTimeout time.Duration `yaml:"request_timeout" default:"170s"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes" default:"20971520"`
	} `yaml:"server"`

	Auth struct {
		SecretKey string            `yaml:"secret_key" default:"super-secret-key"`
		Algorithm string            `yaml:"algorithm" default:"HS256"`
		TokenTTL  time.Duration     `yaml:"token_ttl" default:"2h"`
		Users     map[string]string `yaml:"users"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" default:"*"`
	} `yaml:"cors"`

	Extractor struct {
		Pdftoppm    string   `yaml:"pdftoppm" default:"pdftoppm"`
		Tesseract   string   `yaml:"tesseract" default:"tesseract"`
		Languages   []string `yaml:"languages" default:"eng,fra"`
		DPI         int      `yaml:"dpi" default:"300"`
		MaxPages    int      `yaml:"max_pages" default:"0"`
		TessdataDir string   `yaml:"tessdata_dir"`
	} `yaml:"extractor"`

	Providers struct {
		OpenAI  ProviderConfig `yaml:"openai"`
		Gemini  ProviderConfig `yaml:"gemini"`
		Groq    ProviderConfig `yaml:"groq"`
		Claude  ProviderConfig `yaml:"claude"`
		Mistral ProviderConfig `yaml:"mistral"`
	} `yaml:"providers"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`

		Adapters []struct {
			Name    string                 `yaml:"name"`
			Type    string                 `yaml:"type"`
			Enabled bool                   `yaml:"enabled"`
			Options map[string]interface{} `yaml:"options"`
		} `yaml:"adapters"`
	} `yaml:"logging"`

	GRPC struct {
		Enabled bool `yaml:"enabled" default:"true"`
	} `yaml:"grpc"`
}

// expandEnvVars expands environment variables in a string using ${VAR} syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})
}

// Default returns a configuration populated with built-in defaults only
func Default() *Config {
	config := &Config{}

	config.Server.Port = 8000
	config.Server.Host = "0.0.0.0"
	config.Server.ReadTimeout = 30 * time.Second
	config.Server.WriteTimeout = 180 * time.Second
	config.Server.IdleTimeout = 60 * time.Second
	config.Server.RequestTimeout = 170 * time.Second
	config.Server.MaxUploadBytes = 20 << 20

	config.Auth.SecretKey = "super-secret-key"
	config.Auth.Algorithm = "HS256"
	config.Auth.TokenTTL = 2 * time.Hour
	config.Auth.Users = map[string]string{}

	config.CORS.AllowedOrigins = []string{"*"}

	config.Extractor.Pdftoppm = "pdftoppm"
	config.Extractor.Tesseract = "tesseract"
	config.Extractor.Languages = []string{"eng", "fra"}
	config.Extractor.DPI = 300

	config.Providers.OpenAI = ProviderConfig{Model: "gpt-4", Timeout: 120 * time.Second}
	config.Providers.Gemini = ProviderConfig{Model: "models/gemini-1.5-pro-latest", Timeout: 120 * time.Second}
	config.Providers.Groq = ProviderConfig{Model: "llama3-70b-8192", BaseURL: "https://api.groq.com/openai/v1", Timeout: 120 * time.Second}
	config.Providers.Claude = ProviderConfig{Model: "claude-3-opus-20240229", Timeout: 120 * time.Second, MaxTokens: 1000}
	config.Providers.Mistral = ProviderConfig{Model: "mistral", BaseURL: "http://localhost:11434/api/chat", Timeout: 160 * time.Second}

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.GRPC.Enabled = true

	return config
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := Default()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))
			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		}
	}

	if err := config.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if host := os.Getenv("HOST"); host != "" {
		c.Server.Host = host
	}

	if secret := os.Getenv("SECRET_KEY"); secret != "" {
		c.Auth.SecretKey = secret
	}

	if alg := os.Getenv("ALGORITHM"); alg != "" {
		c.Auth.Algorithm = alg
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		if list := utils.SplitAndTrim(origins); len(list) > 0 {
			c.CORS.AllowedOrigins = list
		}
	}

	if users := os.Getenv("USERS"); users != "" {
		parsed := map[string]string{}
		if err := json.Unmarshal([]byte(users), &parsed); err != nil {
			return fmt.Errorf("parse USERS: %w", err)
		}
		c.Auth.Users = parsed
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if lang := os.Getenv("TESSERACT_LANG"); lang != "" {
		c.Extractor.Languages = strings.Split(lang, "+")
	}

	if dpi := os.Getenv("OCR_DPI"); dpi != "" {
		if d, err := strconv.Atoi(dpi); err == nil {
			c.Extractor.DPI = d
		}
	}

	if maxPages := os.Getenv("OCR_MAX_PAGES"); maxPages != "" {
		if n, err := strconv.Atoi(maxPages); err == nil {
			c.Extractor.MaxPages = n
		}
	}

	if url := os.Getenv("MISTRAL_URL"); url != "" {
		c.Providers.Mistral.BaseURL = url
	}

	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.Providers.OpenAI.BaseURL = url
	}

	if url := os.Getenv("GROQ_BASE_URL"); url != "" {
		c.Providers.Groq.BaseURL = url
	}

	if url := os.Getenv("GEMINI_BASE_URL"); url != "" {
		c.Providers.Gemini.BaseURL = url
	}

	if url := os.Getenv("CLAUDE_BASE_URL"); url != "" {
		c.Providers.Claude.BaseURL = url
	}

	if grpcEnabled := os.Getenv("GRPC_ENABLED"); grpcEnabled != "" {
		c.GRPC.Enabled = grpcEnabled == "true" || grpcEnabled == "1"
	}

	return nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth.secret_key must not be empty")
	}
	if !strings.HasPrefix(c.Auth.Algorithm, "HS") {
		return fmt.Errorf("unsupported signing algorithm %q: only HMAC (HS256/HS384/HS512) is supported", c.Auth.Algorithm)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive, got %s", c.Server.RequestTimeout)
	}
	if c.Extractor.DPI <= 0 {
		return fmt.Errorf("extractor.dpi must be positive, got %d", c.Extractor.DPI)
	}
	if len(c.Extractor.Languages) == 0 {
		return fmt.Errorf("extractor.languages must list at least one OCR language")
	}
	return nil
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

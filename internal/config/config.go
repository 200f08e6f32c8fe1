package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable for the CLI and the API server.
type Config struct {
	// LLM provider
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`

	// Tariff in USD per 1000 tokens.
	PriceInputPer1K  float64 `yaml:"price_input_per_1k"`
	PriceOutputPer1K float64 `yaml:"price_output_per_1k"`

	// Routing and truncation, all measured in characters.
	DirectThreshold int `yaml:"direct_threshold"`
	ChunkSize       int `yaml:"chunk_size"`
	ExtractChars    int `yaml:"extract_chars"`
	QAChars         int `yaml:"qa_chars"`

	// Adapter behavior
	MaxConcurrentChunks int           `yaml:"max_concurrent_chunks"`
	MaxRetries          int           `yaml:"max_retries"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`

	// Document reader
	MaxFileBytes   int64 `yaml:"max_file_bytes"`
	DetectLanguage bool  `yaml:"detect_language"`

	// Export
	OutputDir string `yaml:"output_dir"`

	// Server
	Port         string        `yaml:"port"`
	ServerAPIKey string        `yaml:"server_api_key"`
	WorkerCount  int           `yaml:"worker_count"`
	MaxQueueSize int           `yaml:"max_queue_size"`
	JobTTL       time.Duration `yaml:"job_ttl"`
}

// MaxRetriesLimit bounds max_retries.
const MaxRetriesLimit = 10

// Provider names accepted in Config.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Provider:            ProviderOpenAI,
		PriceInputPer1K:     0.00015,
		PriceOutputPer1K:    0.0006,
		DirectThreshold:     12000,
		ChunkSize:           10000,
		ExtractChars:        8000,
		QAChars:             30000,
		MaxConcurrentChunks: 4,
		MaxRetries:          2,
		RequestTimeout:      120 * time.Second,
		MaxFileBytes:        52428800, // 50MB
		DetectLanguage:      true,
		OutputDir:           ".",
		Port:                "8090",
		WorkerCount:         2,
		MaxQueueSize:        50,
		JobTTL:              1 * time.Hour,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if any),
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = providerKey(cfg.Provider)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Provider = envOr("DOCSUM_PROVIDER", c.Provider)
	c.Model = envOr("DOCSUM_MODEL", c.Model)
	c.BaseURL = envOr("DOCSUM_BASE_URL", c.BaseURL)

	c.PriceInputPer1K = envFloat("DOCSUM_PRICE_INPUT_PER_1K", c.PriceInputPer1K)
	c.PriceOutputPer1K = envFloat("DOCSUM_PRICE_OUTPUT_PER_1K", c.PriceOutputPer1K)

	c.DirectThreshold = envInt("DOCSUM_DIRECT_THRESHOLD", c.DirectThreshold)
	c.ChunkSize = envInt("DOCSUM_CHUNK_SIZE", c.ChunkSize)
	c.ExtractChars = envInt("DOCSUM_EXTRACT_CHARS", c.ExtractChars)
	c.QAChars = envInt("DOCSUM_QA_CHARS", c.QAChars)

	c.MaxConcurrentChunks = envInt("DOCSUM_MAX_CONCURRENT_CHUNKS", c.MaxConcurrentChunks)
	c.MaxRetries = envInt("DOCSUM_MAX_RETRIES", c.MaxRetries)
	c.RequestTimeout = envDuration("DOCSUM_REQUEST_TIMEOUT", c.RequestTimeout)

	c.MaxFileBytes = envInt64("DOCSUM_MAX_FILE_BYTES", c.MaxFileBytes)
	c.DetectLanguage = envBool("DOCSUM_DETECT_LANGUAGE", c.DetectLanguage)
	c.OutputDir = envOr("DOCSUM_OUTPUT_DIR", c.OutputDir)

	c.Port = envOr("PORT", c.Port)
	c.ServerAPIKey = envOr("DOCSUM_API_KEY", c.ServerAPIKey)
	c.WorkerCount = envInt("DOCSUM_WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("DOCSUM_MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.JobTTL = envDuration("DOCSUM_JOB_TTL", c.JobTTL)
}

// Validate checks the settings needed by every command.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key for provider %s is required", c.Provider)
	}
	if c.DirectThreshold <= 0 || c.ChunkSize <= 0 || c.ExtractChars <= 0 || c.QAChars <= 0 {
		return fmt.Errorf("direct_threshold, chunk_size, extract_chars and qa_chars must be positive")
	}
	if c.PriceInputPer1K < 0 || c.PriceOutputPer1K < 0 {
		return fmt.Errorf("token prices must not be negative")
	}
	if c.MaxConcurrentChunks <= 0 {
		return fmt.Errorf("max_concurrent_chunks must be positive")
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("max_retries must be between 0 and %d", MaxRetriesLimit)
	}
	return nil
}

// ValidateServer checks the additional settings required by the API server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ServerAPIKey == "" {
		return fmt.Errorf("DOCSUM_API_KEY is required")
	}
	if c.WorkerCount <= 0 || c.MaxQueueSize <= 0 {
		return fmt.Errorf("worker_count and max_queue_size must be positive")
	}
	return nil
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	case ProviderGemini:
		return "gemini-1.5-flash"
	default:
		return "gpt-4o-mini"
	}
}

func providerKey(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ProviderGemini:
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			return v
		}
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

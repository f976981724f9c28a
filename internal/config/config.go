package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/doccheck/internal/retry"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LLM providers for the semantic fallback.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Semantic matcher
	LLMProvider     string
	AnthropicAPIKey string
	AnthropicModel  string
	LLMBaseURL      string
	LLMAPIKey       string
	LLMModel        string
	LLMTimeout      time.Duration

	// Backoff for fetches and model calls
	Retry retry.Config

	// Structure check
	StructureCheckEnabled bool
	CriticalChapters      []string
	MaxMissingChapters    int
	StripPunctuation      bool

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Fetching
	FetchTimeout          time.Duration
	FetchCookiesFile      string
	FetchMinContentLength int

	// PDF
	PDFFallbackPdftotext bool

	// Logging
	LogFormat string
	LogLevel  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                  "8090",
		AnthropicModel:        "claude-sonnet-4-5-20250929",
		LLMBaseURL:            "http://localhost:8080",
		LLMTimeout:            60 * time.Second,
		Retry:                 retry.DefaultConfig(),
		StructureCheckEnabled: true,
		CriticalChapters:      []string{"reliability", "safety"},
		MaxMissingChapters:    3,
		StripPunctuation:      true,
		WorkerCount:           4,
		MaxQueueSize:          100,
		MaxUploadBytes:        52428800, // 50MB
		JobTTL:                1 * time.Hour,
		FetchTimeout:          30 * time.Second,
		FetchMinContentLength: 100,
		PDFFallbackPdftotext:  true,
		LogFormat:             "json",
		LogLevel:              "info",
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by DOCCHECK_CONFIG_FILE and the environment, in increasing precedence. A
// .env file in the working directory is loaded first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("DOCCHECK_CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}
	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = envOr("PORT", c.Port)
	c.APIKey = envOr("DOCCHECK_API_KEY", c.APIKey)

	c.LLMProvider = strings.ToLower(envOr("LLM_PROVIDER", c.LLMProvider))
	c.AnthropicAPIKey = envOr("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.AnthropicModel = envOr("ANTHROPIC_MODEL", c.AnthropicModel)
	c.LLMBaseURL = envOr("LLM_BASE_URL", c.LLMBaseURL)
	c.LLMAPIKey = envOr("LLM_API_KEY", c.LLMAPIKey)
	c.LLMModel = envOr("LLM_MODEL", c.LLMModel)
	c.LLMTimeout = envDuration("LLM_TIMEOUT", c.LLMTimeout)

	c.Retry.MaxRetries = envInt("RETRY_MAX_RETRIES", c.Retry.MaxRetries)
	c.Retry.InitialDelay = envDuration("RETRY_INITIAL_DELAY", c.Retry.InitialDelay)
	c.Retry.MaxDelay = envDuration("RETRY_MAX_DELAY", c.Retry.MaxDelay)
	c.Retry.BackoffFactor = envFloat("RETRY_BACKOFF_FACTOR", c.Retry.BackoffFactor)
	c.Retry.EnableJitter = envBool("RETRY_ENABLE_JITTER", c.Retry.EnableJitter)

	c.StructureCheckEnabled = envBool("STRUCTURE_CHECK_ENABLED", c.StructureCheckEnabled)
	if v, ok := os.LookupEnv("CRITICAL_CHAPTERS"); ok {
		c.CriticalChapters = SplitList(v)
	}
	c.MaxMissingChapters = envInt("MAX_MISSING_CHAPTERS", c.MaxMissingChapters)
	c.StripPunctuation = envBool("TITLE_STRIP_PUNCTUATION", c.StripPunctuation)

	c.WorkerCount = envInt("WORKER_COUNT", c.WorkerCount)
	c.MaxQueueSize = envInt("MAX_QUEUE_SIZE", c.MaxQueueSize)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.JobTTL = envDuration("JOB_TTL", c.JobTTL)

	c.FetchTimeout = envDuration("FETCH_TIMEOUT", c.FetchTimeout)
	c.FetchCookiesFile = envOr("FETCH_COOKIES_FILE", c.FetchCookiesFile)
	c.FetchMinContentLength = envInt("FETCH_MIN_CONTENT_LENGTH", c.FetchMinContentLength)

	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)

	c.LogFormat = strings.ToLower(envOr("LOG_FORMAT", c.LogFormat))
	c.LogLevel = strings.ToLower(envOr("LOG_LEVEL", c.LogLevel))
}

// normalize fills in derived values and repairs out-of-range sizes.
func (c *Config) normalize() {
	if c.LLMProvider == "" {
		c.LLMProvider = ProviderNone
		if c.AnthropicAPIKey != "" {
			c.LLMProvider = ProviderAnthropic
		}
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, fmt.Errorf("DOCCHECK_API_KEY is required"))
	}
	switch c.LLMProvider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, fmt.Errorf("ANTHROPIC_API_KEY is required for provider %q", c.LLMProvider))
		}
	case ProviderOpenAI:
		if c.LLMBaseURL == "" || c.LLMModel == "" {
			errs = append(errs, fmt.Errorf("LLM_BASE_URL and LLM_MODEL are required for provider %q", c.LLMProvider))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	if err := c.Retry.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, name := range c.CriticalChapters {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("critical chapter %d is empty", i))
		}
	}
	if c.MaxMissingChapters < 0 {
		errs = append(errs, fmt.Errorf("MAX_MISSING_CHAPTERS must be >= 0, got %d", c.MaxMissingChapters))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
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

// fileConfig is the YAML overlay. Unset fields keep their current value.
type fileConfig struct {
	Port string `yaml:"port"`
	LLM  struct {
		Provider string         `yaml:"provider"`
		BaseURL  string         `yaml:"base_url"`
		Model    string         `yaml:"model"`
		Timeout  *time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Retry struct {
		MaxRetries    *int           `yaml:"max_retries"`
		InitialDelay  *time.Duration `yaml:"initial_delay"`
		MaxDelay      *time.Duration `yaml:"max_delay"`
		BackoffFactor *float64       `yaml:"backoff_factor"`
		EnableJitter  *bool          `yaml:"enable_jitter"`
	} `yaml:"retry"`
	Structure struct {
		Enabled          *bool    `yaml:"enabled"`
		CriticalChapters []string `yaml:"critical_chapters"`
		MaxMissing       *int     `yaml:"max_missing_chapters"`
		StripPunctuation *bool    `yaml:"strip_punctuation"`
	} `yaml:"structure"`
	Fetch struct {
		Timeout          *time.Duration `yaml:"timeout"`
		CookiesFile      string         `yaml:"cookies_file"`
		MinContentLength *int           `yaml:"min_content_length"`
	} `yaml:"fetch"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&c.Port, f.Port)
	setString(&c.LLMProvider, f.LLM.Provider)
	setString(&c.LLMBaseURL, f.LLM.BaseURL)
	setString(&c.LLMModel, f.LLM.Model)
	set(&c.LLMTimeout, f.LLM.Timeout)

	set(&c.Retry.MaxRetries, f.Retry.MaxRetries)
	set(&c.Retry.InitialDelay, f.Retry.InitialDelay)
	set(&c.Retry.MaxDelay, f.Retry.MaxDelay)
	set(&c.Retry.BackoffFactor, f.Retry.BackoffFactor)
	set(&c.Retry.EnableJitter, f.Retry.EnableJitter)

	set(&c.StructureCheckEnabled, f.Structure.Enabled)
	if f.Structure.CriticalChapters != nil {
		c.CriticalChapters = f.Structure.CriticalChapters
	}
	set(&c.MaxMissingChapters, f.Structure.MaxMissing)
	set(&c.StripPunctuation, f.Structure.StripPunctuation)

	set(&c.FetchTimeout, f.Fetch.Timeout)
	setString(&c.FetchCookiesFile, f.Fetch.CookiesFile)
	set(&c.FetchMinContentLength, f.Fetch.MinContentLength)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

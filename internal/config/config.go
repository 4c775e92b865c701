package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the aithena pipeline configuration.
type Config struct {
	Pipeline    PipelineConfig     `yaml:"pipeline"`
	Database    DatabaseConfig     `yaml:"database"`
	Embedding   EmbeddingConfig    `yaml:"embedding"`
	Summary     SummaryConfig      `yaml:"summary"`
	News        NewsConfig         `yaml:"news"`
	SMTP        SMTPConfig         `yaml:"smtp"`
	HTTP        HTTPConfig         `yaml:"http"`
	Storage     StorageConfig      `yaml:"storage"`
	Logging     LoggingConfig      `yaml:"logging"`
	Preferences []PreferenceConfig `yaml:"preferences"`
}

// PipelineConfig holds run parameters.
type PipelineConfig struct {
	KPerPreference     int    `yaml:"k_per_preference"`     // default: 5 * quota
	QuotaPerPreference int    `yaml:"quota_per_preference"` // default: 5
	UserName           string `yaml:"user_name"`
	OutputFile         string `yaml:"output_file"` // empty = no HTML file written
	SendEmail          bool   `yaml:"send_email"`  // requires smtp settings
}

// PreferenceConfig is one user interest category with its keyword profile.
type PreferenceConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DatabaseConfig holds article store settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// SummaryConfig holds summarization provider settings.
// Absent api_key disables AI summaries: the pipeline falls back to truncation.
type SummaryConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Style   string `yaml:"style"` // brief (default), medium, detailed
}

// NewsConfig holds acquisition source settings.
// Absent api_key falls back to the static demonstration articles.
type NewsConfig struct {
	APIKey   string `yaml:"api_key"`
	PageSize int    `yaml:"page_size"`
}

// SMTPConfig holds digest delivery settings. All fields are required for
// email delivery; any missing field disables it (file output still works).
type SMTPConfig struct {
	Server   string `yaml:"server"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Password string `yaml:"password"`
}

// HTTPConfig holds the ops endpoint settings. Port 0 disables it.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Pipeline.QuotaPerPreference <= 0 {
		c.Pipeline.QuotaPerPreference = 5
	}
	if c.Pipeline.KPerPreference <= 0 {
		c.Pipeline.KPerPreference = 5 * c.Pipeline.QuotaPerPreference
	}
	if c.Pipeline.UserName == "" {
		c.Pipeline.UserName = "there"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Summary.Style == "" {
		c.Summary.Style = "brief"
	}
	if c.News.PageSize <= 0 {
		c.News.PageSize = 5
	}
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = 587
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "aithena:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}

	switch c.Summary.Style {
	case "brief", "medium", "detailed":
	default:
		return fmt.Errorf(
			"summary.style must be \"brief\", \"medium\" or \"detailed\", got %q",
			c.Summary.Style,
		)
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}

	if c.Pipeline.SendEmail && !c.SMTPConfigured() {
		return fmt.Errorf("pipeline.send_email requires smtp server, from, to and password")
	}

	return nil
}

// SMTPConfigured reports whether every field needed for email delivery is set.
func (c *Config) SMTPConfigured() bool {
	s := c.SMTP
	return s.Server != "" && s.From != "" && s.To != "" && s.Password != ""
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

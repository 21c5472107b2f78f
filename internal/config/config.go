// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Annotation() AnnotationConfig
	Capture() CaptureConfig
	Export() ExportConfig
	Server() ServerConfig

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserSettleDelay(d time.Duration)

	// Capture Setters
	SetCapturePollInterval(d time.Duration)

	// Export Setters
	SetExportDir(dir string)
	SetExportFormat(format string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	BrowserCfg    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	AnnotationCfg AnnotationConfig `mapstructure:"annotation" yaml:"annotation"`
	CaptureCfg    CaptureConfig    `mapstructure:"capture" yaml:"capture"`
	ExportCfg     ExportConfig     `mapstructure:"export" yaml:"export"`
	ServerCfg     ServerConfig     `mapstructure:"server" yaml:"server"`
}

var _ Interface = (*Config)(nil)

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig         { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig       { return c.BrowserCfg }
func (c *Config) Annotation() AnnotationConfig { return c.AnnotationCfg }
func (c *Config) Capture() CaptureConfig       { return c.CaptureCfg }
func (c *Config) Export() ExportConfig         { return c.ExportCfg }
func (c *Config) Server() ServerConfig         { return c.ServerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBrowserHeadless(b bool)              { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserSettleDelay(d time.Duration)  { c.BrowserCfg.SettleDelay = d }
func (c *Config) SetCapturePollInterval(d time.Duration) { c.CaptureCfg.PollInterval = d }
func (c *Config) SetExportDir(dir string)                { c.ExportCfg.Dir = dir }
func (c *Config) SetExportFormat(format string)          { c.ExportCfg.Format = format }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the controlled browser instance.
type BrowserConfig struct {
	// Headless is off by default: the user clicks around in the visible window.
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	DisableGPU        bool          `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	StartMaximized    bool          `mapstructure:"start_maximized" yaml:"start_maximized"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	ExecPath          string        `mapstructure:"exec_path" yaml:"exec_path"`
	UserDataDir       string        `mapstructure:"user_data_dir" yaml:"user_data_dir"`
	Args              []string      `mapstructure:"args" yaml:"args"`
	DefaultURL        string        `mapstructure:"default_url" yaml:"default_url"`
	LaunchTimeout     time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// SettleDelay is the fixed wait between navigation and listener injection.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
}

// LLMProvider defines the supported description generators.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	// ProviderNone disables generation; every description is the fallback.
	ProviderNone LLMProvider = "none"
)

// AnnotationConfig configures the element description generator.
type AnnotationConfig struct {
	Provider    LLMProvider   `mapstructure:"provider" yaml:"provider"`
	Model       string        `mapstructure:"model" yaml:"model"`
	APIKey      string        `mapstructure:"api_key" yaml:"-"`
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Temperature float32       `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	// Concurrency bounds the annotation calls issued in parallel within one poll cycle.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
}

// CaptureConfig tunes the capture coordinator.
type CaptureConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// ExportConfig controls where and how reports are written.
type ExportConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	ListenAddr     string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "navscribe")
	v.SetDefault("logger.log_file", "navscribe.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.start_maximized", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.default_url", "https://www.google.com")
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.settle_delay", "2s")

	// -- Annotation --
	v.SetDefault("annotation.provider", string(ProviderGemini))
	v.SetDefault("annotation.model", "gemini-2.5-flash")
	v.SetDefault("annotation.timeout", "10s")
	v.SetDefault("annotation.rate_limit", 2.0)
	v.SetDefault("annotation.temperature", 0.2)
	v.SetDefault("annotation.max_tokens", 128)
	v.SetDefault("annotation.concurrency", 4)

	// -- Capture --
	v.SetDefault("capture.poll_interval", "3s")

	// -- Export --
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.format", "docx")

	// -- Server --
	v.SetDefault("server.listen_addr", "127.0.0.1:5000")
	v.SetDefault("server.request_timeout", "120s")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data. GOOGLE_API_KEY is honored
	// for compatibility with the usual Gemini tooling.
	_ = v.BindEnv("annotation.api_key", "NAVSCRIBE_ANNOTATION_API_KEY", "GOOGLE_API_KEY")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.AnnotationCfg.APIKey == "" {
		cfg.AnnotationCfg.APIKey = os.Getenv("GOOGLE_API_KEY")
	}

	dir, err := homedir.Expand(cfg.ExportCfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("invalid export.dir %q: %w", cfg.ExportCfg.Dir, err)
	}
	cfg.ExportCfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.BrowserCfg.SettleDelay < 0 {
		return fmt.Errorf("browser.settle_delay must not be negative")
	}
	if c.CaptureCfg.PollInterval <= 0 {
		return fmt.Errorf("capture.poll_interval must be a positive duration")
	}
	if err := c.AnnotationCfg.Validate(); err != nil {
		return fmt.Errorf("annotation configuration invalid: %w", err)
	}
	switch strings.ToLower(c.ExportCfg.Format) {
	case "docx", "word", "json":
	default:
		return fmt.Errorf("export.format must be one of [docx word json], got %q", c.ExportCfg.Format)
	}
	return nil
}

// Validate checks the annotation settings.
func (a *AnnotationConfig) Validate() error {
	switch a.Provider {
	case ProviderGemini, ProviderNone:
	default:
		return fmt.Errorf("unknown provider %q. Supported: [%s %s]", a.Provider, ProviderGemini, ProviderNone)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if a.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if a.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// Manager implements the ConfigManager interface using Viper
type Manager struct {
	configFile string
	envFiles   []string
	config     *domain.Config
}

var _ domain.ConfigManager = (*Manager)(nil)

// Option customises a Manager before the first load
type Option func(*Manager)

// WithConfigFile reads the given file instead of searching the default paths
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.configFile = path
	}
}

// WithEnvFiles loads the given dotenv files instead of ./.env
func WithEnvFiles(paths ...string) Option {
	return func(m *Manager) {
		m.envFiles = paths
	}
}

// NewManager creates a new configuration manager
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// A missing .env file is fine; real environment variables still apply
	if err := godotenv.Load(m.envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error reading env file: %w", err)
	}

	v := viper.New()
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/anxiety-diagnosis/")
	}

	v.SetEnvPrefix("ANXIETY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	if config.ModelFile != "" {
		model, err := LoadModelFile(config.ModelFile)
		if err != nil {
			return err
		}
		config.Model = *model
	}
	if config.Model.IsEmpty() {
		config.Model = DefaultModel()
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("model_file", "")

	// Engine defaults
	v.SetDefault("engine.resolution", fuzzy.DefaultResolution)
	v.SetDefault("engine.method", string(fuzzy.Centroid))
	v.SetDefault("engine.no_activation_policy", string(fuzzy.PolicyFallback))

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", 1024)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.filename", "")

	// Batch defaults
	methods := make([]string, 0, len(fuzzy.Methods()))
	for _, method := range fuzzy.Methods() {
		methods = append(methods, method.String())
	}
	v.SetDefault("batch.cases_file", "")
	v.SetDefault("batch.methods", methods)

	// Report defaults
	v.SetDefault("report.output_dir", "reports")
	v.SetDefault("report.curve_samples", 201)
}

// LoadModelFile reads a standalone model description (YAML or JSON)
func LoadModelFile(path string) (*domain.ModelConfig, error) {
	mv := viper.New()
	mv.SetConfigFile(path)
	if err := mv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading model file %s: %w", path, err)
	}

	model := &domain.ModelConfig{}
	// A model file may either be the model itself or nest it under "model"
	if mv.IsSet("model") {
		if err := mv.UnmarshalKey("model", model); err != nil {
			return nil, fmt.Errorf("error unmarshaling model file %s: %w", path, err)
		}
	} else if err := mv.Unmarshal(model); err != nil {
		return nil, fmt.Errorf("error unmarshaling model file %s: %w", path, err)
	}
	if model.IsEmpty() {
		return nil, fmt.Errorf("model file %s describes no variables or rules", path)
	}
	return model, nil
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetLoggingConfig returns logging configuration. Production always logs JSON.
func (m *Manager) GetLoggingConfig() *domain.LoggingConfig {
	logging := m.config.Logging
	if m.IsProduction() {
		logging.Format = "json"
	}
	return &logging
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	// Validate engine configuration
	if config.Engine.Resolution != 0 && config.Engine.Resolution < 2 {
		return fmt.Errorf("invalid engine resolution: %d", config.Engine.Resolution)
	}
	if _, err := fuzzy.ParseMethod(config.Engine.Method); err != nil {
		return fmt.Errorf("invalid engine method: %w", err)
	}
	if policy := fuzzy.NoActivationPolicy(config.Engine.NoActivationPolicy); policy != "" && !policy.IsValid() {
		return fmt.Errorf("invalid no-activation policy: %s", config.Engine.NoActivationPolicy)
	}

	// Validate cache configuration
	if config.Cache.Enabled && config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive when the cache is enabled")
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	if config.Logging.Output == "file" && config.Logging.Filename == "" {
		return fmt.Errorf("logging filename is required when output is file")
	}

	// Validate batch configuration
	for _, method := range config.Batch.Methods {
		if _, err := fuzzy.ParseMethod(method); err != nil {
			return fmt.Errorf("invalid batch method: %w", err)
		}
	}

	// Validate report configuration
	if config.Report.CurveSamples < 2 {
		return fmt.Errorf("report curve_samples must be at least 2, got %d", config.Report.CurveSamples)
	}

	if config.Model.IsEmpty() {
		return fmt.Errorf("no fuzzy model configured")
	}

	return nil
}

// ReportPath returns the path of a named report inside the output directory
func (m *Manager) ReportPath(name string) string {
	return filepath.Join(m.config.Report.OutputDir, name)
}

// EnsureOutputDir creates the report directory if it doesn't exist.
func (m *Manager) EnsureOutputDir() error {
	return os.MkdirAll(m.config.Report.OutputDir, 0755)
}

// IsProduction returns true if running in production mode
func (m *Manager) IsProduction() bool {
	return strings.EqualFold(m.config.Environment, "production")
}

package domain

// Diagnoser produces a diagnosis for one set of readings
type Diagnoser interface {
	Diagnose(input CrispInput) (*DiagnosisResult, error)
	DiagnoseWith(input CrispInput, method string) (*DiagnosisResult, error)
}

// Explainer produces plotting artifacts for one set of readings
type Explainer interface {
	Explain(input CrispInput, method string) (*Explanation, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetLoggingConfig() *LoggingConfig
	Validate() error
	IsProduction() bool
	ReportPath(name string) string
	EnsureOutputDir() error
}

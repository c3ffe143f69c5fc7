package domain

// Config represents the main application configuration
type Config struct {
	Environment string        `mapstructure:"environment"`
	ModelFile   string        `mapstructure:"model_file"`
	Engine      EngineConfig  `mapstructure:"engine"`
	Model       ModelConfig   `mapstructure:"model"`
	Cache       CacheConfig   `mapstructure:"cache"`
	Logging     LoggingConfig `mapstructure:"logging"`
	Batch       BatchConfig   `mapstructure:"batch"`
	Report      ReportConfig  `mapstructure:"report"`
}

// EngineConfig controls the inference pipeline
type EngineConfig struct {
	Resolution         int    `mapstructure:"resolution"`           // output universe samples
	Method             string `mapstructure:"method"`               // centroid, bisector, mom, som, lom
	NoActivationPolicy string `mapstructure:"no_activation_policy"` // fallback, error
}

// CacheConfig represents the in-process diagnosis result cache
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"` // stdout, stderr, file
	Filename string `mapstructure:"filename"`
}

// BatchConfig configures the test-case runner
type BatchConfig struct {
	CasesFile string   `mapstructure:"cases_file"`
	Methods   []string `mapstructure:"methods"`
}

// ReportConfig configures workbook rendering
type ReportConfig struct {
	OutputDir    string `mapstructure:"output_dir"`
	CurveSamples int    `mapstructure:"curve_samples"`
}

// ModelConfig is a declarative description of the fuzzy model
type ModelConfig struct {
	Inputs []VariableConfig `mapstructure:"inputs"`
	Output VariableConfig   `mapstructure:"output"`
	Rules  []RuleConfig     `mapstructure:"rules"`
	Bands  []BandConfig     `mapstructure:"bands"`
}

// IsEmpty reports whether no model was configured
func (m ModelConfig) IsEmpty() bool {
	return len(m.Inputs) == 0 && len(m.Rules) == 0 && m.Output.Name == ""
}

// VariableConfig describes one linguistic variable
type VariableConfig struct {
	Name  string      `mapstructure:"name"`
	Min   float64     `mapstructure:"min"`
	Max   float64     `mapstructure:"max"`
	Sets  []SetConfig `mapstructure:"sets"`
	Label string      `mapstructure:"label"` // display name for prompts and charts
}

// SetConfig describes one fuzzy set
type SetConfig struct {
	Name   string    `mapstructure:"name"`
	Shape  string    `mapstructure:"shape"` // triangular, trapezoidal
	Points []float64 `mapstructure:"points"`
}

// RuleConfig describes one IF-THEN rule
type RuleConfig struct {
	Name        string           `mapstructure:"name"`
	Description string           `mapstructure:"description"`
	If          AntecedentConfig `mapstructure:"if"`
	Then        string           `mapstructure:"then"`
	Weight      *float64         `mapstructure:"weight"` // unset means 1
}

// AntecedentConfig is an operator over conditions and nested groups
type AntecedentConfig struct {
	Operator   string             `mapstructure:"operator"` // and, or
	Conditions []ConditionConfig  `mapstructure:"conditions"`
	Groups     []AntecedentConfig `mapstructure:"groups"`
}

// ConditionConfig references "variable IS set"
type ConditionConfig struct {
	Variable string `mapstructure:"variable"`
	Set      string `mapstructure:"set"`
}

// BandConfig is one category of the output scale
type BandConfig struct {
	Label string  `mapstructure:"label"`
	Lower float64 `mapstructure:"lower"`
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager(WithEnvFiles(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, err)

	cfg := m.GetConfig()
	assert.Equal(t, 1001, cfg.Engine.Resolution)
	assert.Equal(t, "centroid", cfg.Engine.Method)
	assert.Equal(t, "fallback", cfg.Engine.NoActivationPolicy)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, []string{"centroid", "bisector", "mom", "som", "lom"}, cfg.Batch.Methods)
	assert.Equal(t, "reports", cfg.Report.OutputDir)
	assert.Equal(t, 201, cfg.Report.CurveSamples)

	assert.False(t, cfg.Model.IsEmpty())
	assert.Len(t, cfg.Model.Rules, 14)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, m.IsProduction())
	assert.Equal(t, "text", m.GetLoggingConfig().Format)
	assert.NoError(t, m.Validate())
}

func TestNewManager_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
environment: production
engine:
  method: bisector
  resolution: 501
  no_activation_policy: error
cache:
  enabled: false
logging:
  level: debug
  format: json
report:
  output_dir: `+filepath.Join(dir, "out")+`
`)

	m, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, "bisector", m.GetConfig().Engine.Method)
	assert.Equal(t, 501, m.GetConfig().Engine.Resolution)
	assert.Equal(t, "error", m.GetConfig().Engine.NoActivationPolicy)
	assert.False(t, m.GetConfig().Cache.Enabled)
	assert.Equal(t, "debug", m.GetLoggingConfig().Level)
	assert.True(t, m.IsProduction())
	assert.NoError(t, m.Validate())

	require.NoError(t, m.EnsureOutputDir())
	assert.DirExists(t, filepath.Join(dir, "out"))
	assert.Equal(t, filepath.Join(dir, "out", "batch.xlsx"), m.ReportPath("batch.xlsx"))
}

func TestNewManager_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ANXIETY_ENGINE_METHOD", "mom")
	t.Setenv("ANXIETY_LOGGING_LEVEL", "warn")

	m, err := NewManager(WithEnvFiles(filepath.Join(t.TempDir(), "missing.env")))
	require.NoError(t, err)

	assert.Equal(t, "mom", m.GetConfig().Engine.Method)
	assert.Equal(t, "warn", m.GetLoggingConfig().Level)
}

func TestNewManager_DotEnvFile(t *testing.T) {
	t.Cleanup(func() { os.Unsetenv("ANXIETY_ENGINE_METHOD") })
	envFile := writeFile(t, t.TempDir(), ".env", "ANXIETY_ENGINE_METHOD=lom\n")

	m, err := NewManager(WithEnvFiles(envFile))
	require.NoError(t, err)

	assert.Equal(t, "lom", m.GetConfig().Engine.Method)
}

func TestNewManager_MalformedConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "engine: [unterminated\n")

	_, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
	assert.Error(t, err)
}

func TestNewManager_ModelFile(t *testing.T) {
	dir := t.TempDir()
	modelPath := writeFile(t, dir, "model.yaml", smallModelYAML)
	path := writeFile(t, dir, "config.yaml", "model_file: "+modelPath+"\n")

	m, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	model := &m.GetConfig().Model
	require.Len(t, model.Inputs, 1)
	assert.Equal(t, "temperature", model.Inputs[0].Name)
	assert.Equal(t, "comfort", model.Output.Name)
}

func TestManager_Validate(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		errMsg string
	}{
		{"Unknown method", "engine:\n  method: median\n", "invalid engine method"},
		{"Bad resolution", "engine:\n  resolution: 1\n", "invalid engine resolution"},
		{"Unknown policy", "engine:\n  no_activation_policy: guess\n", "invalid no-activation policy"},
		{"Cache without room", "cache:\n  max_entries: 0\n", "max_entries"},
		{"Bad log level", "logging:\n  level: loud\n", "invalid log level"},
		{"File output without name", "logging:\n  output: file\n", "filename is required"},
		{"Bad batch method", "batch:\n  methods: [centroid, median]\n", "invalid batch method"},
		{"Too few curve samples", "report:\n  curve_samples: 1\n", "curve_samples"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "config.yaml", tt.yaml)

			m, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
			require.NoError(t, err)

			err = m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestManager_ProductionLogsJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "environment: Production\nlogging:\n  format: text\n")

	m, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	assert.True(t, m.IsProduction())
	assert.Equal(t, "json", m.GetLoggingConfig().Format)
	assert.Equal(t, "text", m.GetConfig().Logging.Format)
}

func TestManager_ReportPath(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "nested", "reports")
	path := writeFile(t, dir, "config.yaml", "report:\n  output_dir: "+out+"\n")

	m, err := NewManager(WithConfigFile(path), WithEnvFiles(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)

	assert.NoDirExists(t, out)
	require.NoError(t, m.EnsureOutputDir())
	assert.DirExists(t, out)
	assert.Equal(t, filepath.Join(out, "explanation.xlsx"), m.ReportPath("explanation.xlsx"))
}

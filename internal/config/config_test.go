package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"powercurve/internal/analysis"
	"powercurve/internal/ingest"
	"powercurve/internal/workout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.FTP != 251 {
		t.Errorf("Athlete.FTP = %v, want 251", cfg.Athlete.FTP)
	}
	if cfg.Analysis.SmoothWindow != 10 {
		t.Errorf("Analysis.SmoothWindow = %v, want 10", cfg.Analysis.SmoothWindow)
	}
	if cfg.Analysis.MaxDuration != 3600 {
		t.Errorf("Analysis.MaxDuration = %v, want 3600", cfg.Analysis.MaxDuration)
	}
	if cfg.Analysis.BinWidth != 10 {
		t.Errorf("Analysis.BinWidth = %v, want 10", cfg.Analysis.BinWidth)
	}
	if cfg.Ingest.MaxMissingDeficit != 200 {
		t.Errorf("Ingest.MaxMissingDeficit = %v, want 200", cfg.Ingest.MaxMissingDeficit)
	}
	if cfg.Ingest.CSVColumns["Power"] != 11 {
		t.Errorf("Ingest.CSVColumns[Power] = %v, want 11", cfg.Ingest.CSVColumns["Power"])
	}

	// Store is opt-in
	if cfg.Store.Enabled {
		t.Error("Store.Enabled should be false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error: %v", err)
	}
}

func TestDefaultConfig_DoesNotAliasPackageDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Analysis.LabelDurations[0] = 999
	cfg.Ingest.CSVColumns["Power"] = 0

	if analysis.LabelDurations[0] != 1 {
		t.Errorf("analysis.LabelDurations[0] = %v, want 1", analysis.LabelDurations[0])
	}
	if ingest.DefaultCSVColumns[workout.Power] != 11 {
		t.Errorf("ingest.DefaultCSVColumns[Power] = %v, want 11", ingest.DefaultCSVColumns[workout.Power])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:        "zero FTP",
			mutate:      func(c *Config) { c.Athlete.FTP = 0 },
			expectError: true,
			errContains: "ftp",
		},
		{
			name:        "zero smooth window",
			mutate:      func(c *Config) { c.Analysis.SmoothWindow = 0 },
			expectError: true,
			errContains: "smooth window",
		},
		{
			name:        "zone multipliers out of order",
			mutate:      func(c *Config) { c.Analysis.ZoneMultipliers = []float64{0.69, 0.84, 0.95, 1.06} },
			expectError: true,
			errContains: "analysis",
		},
		{
			name:        "negative bin width",
			mutate:      func(c *Config) { c.Analysis.BinWidth = -5 },
			expectError: true,
			errContains: "bin width",
		},
		{
			name:        "completeness above one",
			mutate:      func(c *Config) { c.Ingest.MinCompleteness = 1.5 },
			expectError: true,
			errContains: "min_completeness",
		},
		{
			name:        "no power column",
			mutate:      func(c *Config) { delete(c.Ingest.CSVColumns, "Power") },
			expectError: true,
			errContains: "csv_columns",
		},
		{
			name:        "unknown export",
			mutate:      func(c *Config) { c.Output.Export = "xlsx" },
			expectError: true,
			errContains: "output.export",
		},
		{
			name:   "parquet export",
			mutate: func(c *Config) { c.Output.Export = "parquet" },
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Log.Level = "chatty" },
			expectError: true,
			errContains: "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Load() error = %v, want ErrNoConfig", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"athlete": {"ftp": 300}, "output": {"export": "csv"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Athlete.FTP != 300 {
		t.Errorf("Athlete.FTP = %v, want 300", cfg.Athlete.FTP)
	}
	if cfg.Output.Export != "csv" {
		t.Errorf("Output.Export = %q, want csv", cfg.Output.Export)
	}
	if cfg.Analysis.SmoothWindow != 10 || cfg.Output.Width != 1600 || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Ingest.CSVColumns) != len(ingest.DefaultCSVColumns) {
		t.Errorf("CSVColumns = %v, want defaults", cfg.Ingest.CSVColumns)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestSaveAndCreateExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if err := CreateExample(path); err != nil {
		t.Fatalf("CreateExample() error: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	cfg.Athlete.FTP = 280
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// An existing file is left alone
	if err := CreateExample(path); err != nil {
		t.Fatalf("CreateExample() error: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reloaded.Athlete.FTP != 280 {
		t.Errorf("Athlete.FTP = %v, want 280", reloaded.Athlete.FTP)
	}
}

func TestParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Athlete.FTP = 300
	cfg.Analysis.MaxDuration = 600
	cfg.Analysis.LabelDurations = []int{60, 5, 1}

	p := cfg.Params()
	if p.Threshold != 300 {
		t.Errorf("Threshold = %v, want 300", p.Threshold)
	}
	if len(p.Durations) != 600 || p.Durations[599] != 600 {
		t.Errorf("Durations has %d entries, want 1..600", len(p.Durations))
	}
	if !slices.Equal(p.LabelDurations, []int{1, 5, 60}) {
		t.Errorf("LabelDurations = %v, want [1 5 60]", p.LabelDurations)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Params().Validate() error: %v", err)
	}
}

func TestCSVColumnMap(t *testing.T) {
	cfg := DefaultConfig()
	cols := cfg.CSVColumnMap()
	if cols[workout.Power] != 11 || cols[workout.Lat] != 3 || cols[workout.Ele] != 10 {
		t.Errorf("CSVColumnMap() = %v", cols)
	}
}

func TestIngestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ingest.MinCompleteness = 0.25
	opts := cfg.IngestOptions(nil)
	if opts.Normalize.MaxMissingDeficit != 200 || opts.Normalize.MinCompleteness != 0.25 {
		t.Errorf("Normalize = %+v", opts.Normalize)
	}
	if opts.CSVColumns[workout.Hr] != 5 {
		t.Errorf("CSVColumns[Hr] = %v, want 5", opts.CSVColumns[workout.Hr])
	}
}

func TestLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel() error: %v", err)
	}
	if level.String() != "DEBUG" {
		t.Errorf("LogLevel() = %v, want DEBUG", level)
	}
}

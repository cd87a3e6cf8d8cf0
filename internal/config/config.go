package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"powercurve/internal/analysis"
	"powercurve/internal/ingest"
	"powercurve/internal/workout"
)

// Config represents the application configuration
type Config struct {
	Athlete  AthleteConfig  `json:"athlete"`
	Analysis AnalysisConfig `json:"analysis"`
	Ingest   IngestConfig   `json:"ingest"`
	Output   OutputConfig   `json:"output"`
	Store    StoreConfig    `json:"store"`
	Log      LogConfig      `json:"log"`
}

// AthleteConfig holds athlete-specific settings
type AthleteConfig struct {
	FTP float64 `json:"ftp"` // functional threshold power, watts
}

// AnalysisConfig holds the tunables of the analysis pipeline
type AnalysisConfig struct {
	SmoothWindow        int       `json:"smooth_window"`
	CompareSmoothWindow int       `json:"compare_smooth_window"`
	MaxDuration         int       `json:"max_duration"`
	LabelDurations      []int     `json:"label_durations"`
	ZoneMultipliers     []float64 `json:"zone_multipliers"`
	BinWidth            float64   `json:"bin_width"`
	PlotFloor           float64   `json:"plot_floor"`
}

// IngestConfig controls parsing and normalization
type IngestConfig struct {
	MaxMissingDeficit int            `json:"max_missing_deficit"`
	MinCompleteness   float64        `json:"min_completeness"`
	CSVColumns        map[string]int `json:"csv_columns"`
}

// OutputConfig controls saved figures and exports
type OutputConfig struct {
	Dir    string `json:"dir"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Export string `json:"export"` // "", "csv" or "parquet"
}

// StoreConfig controls the optional history database
type StoreConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LogConfig controls diagnostics
type LogConfig struct {
	Level string `json:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			FTP: 251,
		},
		Analysis: AnalysisConfig{
			SmoothWindow:        analysis.DefaultSmoothWindow,
			CompareSmoothWindow: analysis.DefaultSmoothWindow,
			MaxDuration:         analysis.DefaultMaxDuration,
			LabelDurations:      slices.Clone(analysis.LabelDurations),
			ZoneMultipliers:     slices.Clone(analysis.DefaultZoneMultipliers),
			BinWidth:            analysis.DefaultBinWidth,
			PlotFloor:           analysis.DefaultPlotFloor,
		},
		Ingest: IngestConfig{
			MaxMissingDeficit: workout.DefaultMaxMissingDeficit,
			CSVColumns:        columnNames(ingest.DefaultCSVColumns),
		},
		Output: OutputConfig{
			Dir:    ".",
			Width:  1600,
			Height: 1200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from path, or ~/.powercurve/config.json when path is empty
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero values from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.FTP == 0 {
		c.Athlete.FTP = defaults.Athlete.FTP
	}
	if c.Analysis.SmoothWindow == 0 {
		c.Analysis.SmoothWindow = defaults.Analysis.SmoothWindow
	}
	if c.Analysis.CompareSmoothWindow == 0 {
		c.Analysis.CompareSmoothWindow = defaults.Analysis.CompareSmoothWindow
	}
	if c.Analysis.MaxDuration == 0 {
		c.Analysis.MaxDuration = defaults.Analysis.MaxDuration
	}
	if len(c.Analysis.LabelDurations) == 0 {
		c.Analysis.LabelDurations = defaults.Analysis.LabelDurations
	}
	if len(c.Analysis.ZoneMultipliers) == 0 {
		c.Analysis.ZoneMultipliers = defaults.Analysis.ZoneMultipliers
	}
	if c.Analysis.BinWidth == 0 {
		c.Analysis.BinWidth = defaults.Analysis.BinWidth
	}
	if c.Analysis.PlotFloor == 0 {
		c.Analysis.PlotFloor = defaults.Analysis.PlotFloor
	}
	if c.Ingest.MaxMissingDeficit == 0 {
		c.Ingest.MaxMissingDeficit = defaults.Ingest.MaxMissingDeficit
	}
	if len(c.Ingest.CSVColumns) == 0 {
		c.Ingest.CSVColumns = defaults.Ingest.CSVColumns
	}
	if c.Output.Dir == "" {
		c.Output.Dir = defaults.Output.Dir
	}
	if c.Output.Width == 0 {
		c.Output.Width = defaults.Output.Width
	}
	if c.Output.Height == 0 {
		c.Output.Height = defaults.Output.Height
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// Save writes the configuration to path, or ~/.powercurve/config.json when path is empty
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return err
		}
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample writes the default config to path if no file exists there
func CreateExample(path string) error {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return err
		}
	}

	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	return Save(&example, path)
}

// Validate checks the config for values the analysis would reject
func (c *Config) Validate() error {
	if c.Athlete.FTP <= 0 {
		return fmt.Errorf("athlete.ftp must be positive, got %v", c.Athlete.FTP)
	}
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if c.Analysis.MaxDuration < 1 {
		return fmt.Errorf("analysis.max_duration must be positive, got %d", c.Analysis.MaxDuration)
	}
	if c.Ingest.MaxMissingDeficit < 0 {
		return fmt.Errorf("ingest.max_missing_deficit must not be negative, got %d", c.Ingest.MaxMissingDeficit)
	}
	if c.Ingest.MinCompleteness < 0 || c.Ingest.MinCompleteness > 1 {
		return fmt.Errorf("ingest.min_completeness must be within [0, 1], got %v", c.Ingest.MinCompleteness)
	}
	for name, idx := range c.Ingest.CSVColumns {
		if idx < 0 {
			return fmt.Errorf("ingest.csv_columns[%q] must not be negative, got %d", name, idx)
		}
	}
	if _, ok := c.Ingest.CSVColumns[string(workout.Power)]; !ok {
		return fmt.Errorf("ingest.csv_columns must map %q", workout.Power)
	}

	// Validate export format
	if c.Output.Export != "" && c.Output.Export != "csv" && c.Output.Export != "parquet" {
		return fmt.Errorf("output.export must be \"csv\" or \"parquet\", got %q", c.Output.Export)
	}
	if c.Output.Width < 200 || c.Output.Height < 200 {
		return fmt.Errorf("output size %dx%d is too small", c.Output.Width, c.Output.Height)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// Params converts the analysis section into the core's parameter structure
func (c *Config) Params() analysis.Params {
	p := analysis.DefaultParams(c.Athlete.FTP)
	p.SmoothWindow = c.Analysis.SmoothWindow
	p.CompareSmoothWindow = c.Analysis.CompareSmoothWindow
	p.Durations = analysis.DenseDurations(c.Analysis.MaxDuration)
	p.LabelDurations = slices.Clone(c.Analysis.LabelDurations)
	slices.Sort(p.LabelDurations)
	p.Zones = analysis.ZoneScheme{Multipliers: slices.Clone(c.Analysis.ZoneMultipliers)}
	p.BinWidth = c.Analysis.BinWidth
	p.PlotFloor = c.Analysis.PlotFloor
	return p
}

// NormalizeOptions converts the ingest section into normalizer options
func (c *Config) NormalizeOptions(logger *slog.Logger) workout.NormalizeOptions {
	return workout.NormalizeOptions{
		MaxMissingDeficit: c.Ingest.MaxMissingDeficit,
		MinCompleteness:   c.Ingest.MinCompleteness,
		Logger:            logger,
	}
}

// IngestOptions converts the ingest section into parser options
func (c *Config) IngestOptions(logger *slog.Logger) ingest.Options {
	return ingest.Options{
		CSVColumns: c.CSVColumnMap(),
		Normalize:  c.NormalizeOptions(logger),
		Logger:     logger,
	}
}

// CSVColumnMap returns the CSV column indices keyed by channel
func (c *Config) CSVColumnMap() map[workout.Channel]int {
	out := make(map[workout.Channel]int, len(c.Ingest.CSVColumns))
	for name, idx := range c.Ingest.CSVColumns {
		out[workout.Channel(name)] = idx
	}
	return out
}

// LogLevel parses log.level
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// StorePath returns the history database path, defaulting to ~/.powercurve/history.db
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

func columnNames(m map[workout.Channel]int) map[string]int {
	out := make(map[string]int, len(m))
	for ch, idx := range m {
		out[string(ch)] = idx
	}
	return out
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".powercurve"), nil
}

// Package config defines run configuration and its loading.
//
// Conventions:
//   - A Config is built once at process start and passed by value.
//   - Paths are resolved through accessors, never through package state.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/okian/pubinfo/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// InputDir holds the extracted pubinfo tables.
	InputDir string `koanf:"input_dir"`

	// OutputDir receives the JSON documents.
	OutputDir string `koanf:"output_dir"`

	// VotesDir is the per-author documents directory, relative to OutputDir.
	VotesDir string `koanf:"votes_dir"`

	LegislatorsFile string `koanf:"legislators_file"`
	BillsFile       string `koanf:"bills_file"`
	ManifestFile    string `koanf:"manifest_file"`

	// Timezone names the zone vote timestamps are recorded in.
	Timezone string `koanf:"timezone"`

	// MaxLineBytes bounds a single line of an extract table.
	MaxLineBytes int `koanf:"max_line_bytes"`

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string `koanf:"metrics_file"`

	// PostgresDSN, when set, mirrors every document into PostgreSQL.
	PostgresDSN string `koanf:"postgres_dsn"`

	// Table file names.
	TableLegislators   string `koanf:"table_legislators"`
	TableBills         string `koanf:"table_bills"`
	TableBillVersions  string `koanf:"table_bill_versions"`
	TableMotions       string `koanf:"table_motions"`
	TableVoteSummaries string `koanf:"table_vote_summaries"`
	TableVotes         string `koanf:"table_votes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		InputDir:           filepath.Join("load_data", "data"),
		OutputDir:          filepath.Join("src", "lib", "data"),
		VotesDir:           "votes",
		LegislatorsFile:    "legislators.json",
		BillsFile:          "bills.json",
		ManifestFile:       "manifest.json",
		Timezone:           "Local",
		MaxLineBytes:       16 << 20,
		TableLegislators:   "LEGISLATOR_TBL.dat",
		TableBills:         "BILL_TBL.dat",
		TableBillVersions:  "BILL_VERSION_TBL.dat",
		TableMotions:       "BILL_MOTION_TBL.dat",
		TableVoteSummaries: "BILL_SUMMARY_VOTE_TBL.dat",
		TableVotes:         "BILL_DETAIL_VOTE_TBL.dat",
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"input_dir", c.InputDir},
		{"output_dir", c.OutputDir},
		{"votes_dir", c.VotesDir},
		{"legislators_file", c.LegislatorsFile},
		{"bills_file", c.BillsFile},
		{"manifest_file", c.ManifestFile},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, r.key)
		}
	}
	for t, name := range c.Tables() {
		if name == "" {
			return fmt.Errorf("%w: file name for table %s must not be empty", ErrInvalidConfig, t)
		}
	}
	if c.MaxLineBytes <= 0 {
		return fmt.Errorf("%w: max_line_bytes must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Tables returns the file name of each extract table.
func (c Config) Tables() map[model.Table]string {
	return map[model.Table]string{
		model.TableLegislators:   c.TableLegislators,
		model.TableBills:         c.TableBills,
		model.TableBillVersions:  c.TableBillVersions,
		model.TableMotions:       c.TableMotions,
		model.TableVoteSummaries: c.TableVoteSummaries,
		model.TableVotes:         c.TableVotes,
	}
}

// Location loads the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// LegislatorsPath is where the legislators document is written.
func (c Config) LegislatorsPath() string { return filepath.Join(c.OutputDir, c.LegislatorsFile) }

// BillsPath is where the bills document is written.
func (c Config) BillsPath() string { return filepath.Join(c.OutputDir, c.BillsFile) }

// ManifestPath is where the run manifest is written.
func (c Config) ManifestPath() string { return filepath.Join(c.OutputDir, c.ManifestFile) }

// VotesPath is the directory holding one document per author.
func (c Config) VotesPath() string { return filepath.Join(c.OutputDir, c.VotesDir) }

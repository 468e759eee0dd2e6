package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"

	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/anomaly"
	apperrors "github.com/mkd-neo4j/neo4j-mcp-payroll/internal/errors"
	"github.com/mkd-neo4j/neo4j-mcp-payroll/internal/scan"
)

const (
	// DefaultPath is read when no --config flag is given. Its absence is not an error.
	DefaultPath = "configs/payroll.yaml"
	envPrefix   = "PAYROLL_"
)

type Config struct {
	Log     LogConfig     `koanf:"log"`
	Neo4j   Neo4jConfig   `koanf:"neo4j"`
	Dataset DatasetConfig `koanf:"dataset"`
	Graph   GraphConfig   `koanf:"graph"`
	Scan    ScanConfig    `koanf:"scan"`
	Anomaly AnomalyConfig `koanf:"anomaly"`
	Export  ExportConfig  `koanf:"export"`
	Metrics MetricsConfig `koanf:"metrics"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

type Neo4jConfig struct {
	URI      string `koanf:"uri" validate:"omitempty,uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	ReadOnly bool   `koanf:"read_only"`
}

type DatasetConfig struct {
	// Path is loaded at server start when set.
	Path string `koanf:"path"`
}

type GraphConfig struct {
	SampleSize  int `koanf:"sample_size" validate:"gte=0"`
	ExportLimit int `koanf:"export_limit" validate:"gte=1"`
}

type ScanConfig struct {
	MaxPlausibleAge     int                `koanf:"max_plausible_age" validate:"gte=1"`
	AgeFallbackFraction float64            `koanf:"age_fallback_fraction" validate:"gte=0,lte=1"`
	AgeFallbackMinimum  int                `koanf:"age_fallback_minimum" validate:"gte=0"`
	AllowanceRatio      float64            `koanf:"allowance_ratio" validate:"gt=0"`
	Ceilings            map[string]float64 `koanf:"ceilings" validate:"dive,gt=0"`
	AtRisk              AtRiskConfig       `koanf:"at_risk"`
	TopSuspects         int                `koanf:"top_suspects" validate:"gte=1"`
	SampleLimit         int                `koanf:"sample_limit" validate:"gte=0"`
}

type AtRiskConfig struct {
	Ghost      float64 `koanf:"ghost" validate:"gte=0"`
	Identity   float64 `koanf:"identity" validate:"gte=0"`
	LivingDead float64 `koanf:"living_dead" validate:"gte=0"`
}

type AnomalyConfig struct {
	Contamination float64            `koanf:"contamination" validate:"gt=0,lte=0.5"`
	TopN          int                `koanf:"top_n" validate:"gte=1"`
	Seed          uint64             `koanf:"seed"`
	Trees         int                `koanf:"trees" validate:"gte=1"`
	SampleSize    int                `koanf:"sample_size" validate:"gte=2"`
	RiskFloor     float64            `koanf:"risk_floor" validate:"gte=0"`
	RiskWidth     float64            `koanf:"risk_width" validate:"gt=0"`
	Perturbation  PerturbationConfig `koanf:"perturbation"`
}

type PerturbationConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Count     int     `koanf:"count" validate:"gte=0"`
	Below     float64 `koanf:"below" validate:"gte=0"`
	MinFactor float64 `koanf:"min_factor" validate:"gt=0"`
	MaxFactor float64 `koanf:"max_factor" validate:"gtefield=MinFactor"`
}

type ExportConfig struct {
	BatchSize       int  `koanf:"batch_size" validate:"gte=1"`
	ClearBeforeLoad bool `koanf:"clear_before_load"`
}

type MetricsConfig struct {
	// Addr enables the Prometheus endpoint, e.g. ":9464". Empty disables it.
	Addr string `koanf:"addr"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Graph: GraphConfig{
			SampleSize:  5,
			ExportLimit: 500,
		},
		Scan: ScanConfig{
			MaxPlausibleAge:     scan.DefaultMaxPlausibleAge,
			AgeFallbackFraction: scan.DefaultAgeFallback.Fraction,
			AgeFallbackMinimum:  scan.DefaultAgeFallback.Minimum,
			AllowanceRatio:      scan.DefaultAllowanceRatio,
			Ceilings: map[string]float64{
				"J": 56000,
				"K": 78000,
				"L": 98000,
				"M": 138000,
				"N": 190000,
				"P": 280000,
			},
			AtRisk: AtRiskConfig{
				Ghost:      85000,
				Identity:   120000,
				LivingDead: 95000,
			},
			TopSuspects: 5,
			SampleLimit: 10,
		},
		Anomaly: AnomalyConfig{
			Contamination: 0.05,
			TopN:          50,
			Seed:          42,
			Trees:         100,
			SampleSize:    256,
			RiskFloor:     55,
			RiskWidth:     44,
			Perturbation: PerturbationConfig{
				Count:     100,
				Below:     150000,
				MinFactor: 1.3,
				MaxFactor: 2.5,
			},
		},
		Export: ExportConfig{
			BatchSize: 1000,
		},
	}
}

// Load layers defaults, the YAML file at path and PAYROLL_ environment variables, in that order.
// An empty path reads DefaultPath if it exists; an explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// PAYROLL_NEO4J__READ_ONLY -> neo4j.read_only
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return apperrors.NewValidationError("INVALID_CONFIG",
				fmt.Sprintf("invalid config: %s failed %q", first.Namespace(), first.Tag())).WithCause(err)
		}
		return apperrors.NewValidationError("INVALID_CONFIG", "invalid config").WithCause(err)
	}
	return nil
}

// AuditOptions converts the scan section into options for scan.RunAudit.
func (c *Config) AuditOptions() scan.AuditOptions {
	return scan.AuditOptions{
		MinSharers: scan.DefaultAuditOptions().MinSharers,
		MaxAge:     c.Scan.MaxPlausibleAge,
		AgeFallback: scan.AgeFallback{
			Fraction: c.Scan.AgeFallbackFraction,
			Minimum:  c.Scan.AgeFallbackMinimum,
		},
		Ceilings:       scan.CeilingsFromFloats(c.Scan.Ceilings),
		AllowanceRatio: c.Scan.AllowanceRatio,
		AtRisk: scan.AtRiskAmounts{
			Ghost:      decimal.NewFromFloat(c.Scan.AtRisk.Ghost),
			Identity:   decimal.NewFromFloat(c.Scan.AtRisk.Identity),
			LivingDead: decimal.NewFromFloat(c.Scan.AtRisk.LivingDead),
		},
		TopSuspects: c.Scan.TopSuspects,
		SampleLimit: c.Scan.SampleLimit,
	}
}

// AnomalyPipeline converts the anomaly section into a pipeline configuration.
func (c *Config) AnomalyPipeline() anomaly.Config {
	a := c.Anomaly
	return anomaly.Config{
		Forest: anomaly.ForestConfig{
			Trees:         a.Trees,
			SampleSize:    a.SampleSize,
			Contamination: a.Contamination,
			Seed:          a.Seed,
		},
		TopN:      a.TopN,
		RiskFloor: a.RiskFloor,
		RiskWidth: a.RiskWidth,
		Perturbation: anomaly.Perturbation{
			Enabled:   a.Perturbation.Enabled,
			Count:     a.Perturbation.Count,
			Below:     a.Perturbation.Below,
			MinFactor: a.Perturbation.MinFactor,
			MaxFactor: a.Perturbation.MaxFactor,
		},
	}
}

// Package config loads engine settings from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the process-level configuration for the planning engine
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Planning PlanningConfig `mapstructure:"planning"`
	Capacity CapacityConfig `mapstructure:"capacity"`
	Data     DataConfig     `mapstructure:"data"`
}

// LogConfig controls log output
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// PlanningConfig carries the MRP defaults
type PlanningConfig struct {
	BucketDays         int           `mapstructure:"bucket_days" validate:"min=1"`
	HorizonDays        int           `mapstructure:"horizon_days" validate:"min=1"`
	DefaultLotPolicy   string        `mapstructure:"default_lot_policy" validate:"oneof=lot-for-lot fixed periods-of-supply"`
	IncludeSafetyStock bool          `mapstructure:"include_safety_stock"`
	QuantityPrecision  int32         `mapstructure:"quantity_precision" validate:"min=0,max=8"`
	MaxBomDepth        int           `mapstructure:"max_bom_depth" validate:"min=1"`
	ExcessMultiple     float64       `mapstructure:"excess_multiple" validate:"gt=0"`
	ExcessPeriods      int           `mapstructure:"excess_periods" validate:"min=1"`
	RunTimeout         time.Duration `mapstructure:"run_timeout"`
}

// CapacityConfig carries the CRP defaults
type CapacityConfig struct {
	Mode                string  `mapstructure:"mode" validate:"oneof=off infinite finite"`
	OverloadThreshold   float64 `mapstructure:"overload_threshold" validate:"gt=0"`
	BottleneckThreshold float64 `mapstructure:"bottleneck_threshold" validate:"gt=0"`
	IncludeSetupTimes   bool    `mapstructure:"include_setup_times"`
	IncludeEfficiency   bool    `mapstructure:"include_efficiency"`
}

// DataConfig points at the input data set
type DataConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// Load reads configuration from the named file (optional) and the
// environment. Environment variables use the PLANWERK_ prefix with
// underscores, e.g. PLANWERK_LOG_LEVEL.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("planning.bucket_days", 7)
	v.SetDefault("planning.horizon_days", 84)
	v.SetDefault("planning.default_lot_policy", "lot-for-lot")
	v.SetDefault("planning.include_safety_stock", true)
	v.SetDefault("planning.quantity_precision", 4)
	v.SetDefault("planning.max_bom_depth", 32)
	v.SetDefault("planning.excess_multiple", 3)
	v.SetDefault("planning.excess_periods", 4)
	v.SetDefault("planning.run_timeout", 5*time.Minute)
	v.SetDefault("capacity.mode", "infinite")
	v.SetDefault("capacity.overload_threshold", 100)
	v.SetDefault("capacity.bottleneck_threshold", 90)
	v.SetDefault("capacity.include_setup_times", true)
	v.SetDefault("capacity.include_efficiency", true)
	v.SetDefault("data.dir", "data")

	v.SetEnvPrefix("PLANWERK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Capacity.BottleneckThreshold > cfg.Capacity.OverloadThreshold {
		return nil, fmt.Errorf("invalid configuration: bottleneck threshold %.1f exceeds overload threshold %.1f",
			cfg.Capacity.BottleneckThreshold, cfg.Capacity.OverloadThreshold)
	}
	return &cfg, nil
}

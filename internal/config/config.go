// Package config provides Viper-based configuration loading for firefight.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout disconnects a client idle for this long. Zero, the default,
	// lets a session wait indefinitely for the next command.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// ContentConfig locates weapons, items, enemy templates and tactics
// scripts on disk. An empty directory selects the embedded default.
type ContentConfig struct {
	WeaponsDir string `mapstructure:"weapons_dir"`
	ItemsDir   string `mapstructure:"items_dir"`
	EnemiesDir string `mapstructure:"enemies_dir"`
	ScriptsDir string `mapstructure:"scripts_dir"`
	// ScriptInstructionLimit bounds the Lua instructions a single hook call
	// may execute. Zero selects the scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// CombatConfig holds the tunable probabilities of the combat rules.
type CombatConfig struct {
	CoverPierceChance     float64 `mapstructure:"cover_pierce_chance"`
	CoverBreakOnHitChance float64 `mapstructure:"cover_break_on_hit_chance"`
	StrayShotChance       float64 `mapstructure:"stray_shot_chance"`
	FlankChance           float64 `mapstructure:"flank_chance"`
	FlankTurns            int     `mapstructure:"flank_turns"`
	FleeChance            float64 `mapstructure:"flee_chance"`
	PlayerCoverAccuracy   float64 `mapstructure:"player_cover_accuracy"`
	OverkillDamage        int     `mapstructure:"overkill_damage"`
	HeadShotChance        float64 `mapstructure:"head_shot_chance"`
	LegShotChance         float64 `mapstructure:"leg_shot_chance"`
	ArmShotChance         float64 `mapstructure:"arm_shot_chance"`
}

// HPConfig holds per-limb hit point pools.
type HPConfig struct {
	Head   int `mapstructure:"head"`
	Thorax int `mapstructure:"thorax"`
	Arm    int `mapstructure:"arm"`
	Leg    int `mapstructure:"leg"`
}

// SkirmishConfig controls the encounters a session generates.
type SkirmishConfig struct {
	MinEnemies int `mapstructure:"min_enemies"`
	MaxEnemies int `mapstructure:"max_enemies"`
	// PlayerName is used when the session does not prompt for a name.
	PlayerName   string   `mapstructure:"player_name"`
	PlayerWeapon string   `mapstructure:"player_weapon"`
	PlayerHP     HPConfig `mapstructure:"player_hp"`
	// Seed fixes the random source when non-zero.
	Seed uint64 `mapstructure:"seed"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Content  ContentConfig  `mapstructure:"content"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Skirmish SkirmishConfig `mapstructure:"skirmish"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateTelnet(c.Telnet),
		validateMetrics(c.Metrics),
		validateContent(c.Content),
		validateCombat(c.Combat),
		validateSkirmish(c.Skirmish),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 1 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 1-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateMetrics(m MetricsConfig) error {
	if m.Enabled && m.Addr == "" {
		return errors.New("metrics.addr must not be empty when metrics are enabled")
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.ScriptInstructionLimit < 0 {
		return fmt.Errorf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit)
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	probs := []struct {
		name string
		v    float64
	}{
		{"cover_pierce_chance", c.CoverPierceChance},
		{"cover_break_on_hit_chance", c.CoverBreakOnHitChance},
		{"stray_shot_chance", c.StrayShotChance},
		{"flank_chance", c.FlankChance},
		{"flee_chance", c.FleeChance},
		{"player_cover_accuracy", c.PlayerCoverAccuracy},
		{"head_shot_chance", c.HeadShotChance},
		{"leg_shot_chance", c.LegShotChance},
		{"arm_shot_chance", c.ArmShotChance},
	}
	for _, p := range probs {
		if p.v < 0 || p.v > 1 {
			errs = append(errs, fmt.Sprintf("combat.%s must be in [0, 1], got %v", p.name, p.v))
		}
	}
	if c.FlankTurns < 1 || c.FlankTurns > 2 {
		errs = append(errs, fmt.Sprintf("combat.flank_turns must be 1 or 2, got %d", c.FlankTurns))
	}
	if c.OverkillDamage <= 0 {
		errs = append(errs, fmt.Sprintf("combat.overkill_damage must be > 0, got %d", c.OverkillDamage))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSkirmish(s SkirmishConfig) error {
	var errs []string
	if s.MinEnemies < 1 {
		errs = append(errs, fmt.Sprintf("skirmish.min_enemies must be >= 1, got %d", s.MinEnemies))
	}
	if s.MaxEnemies < s.MinEnemies {
		errs = append(errs, fmt.Sprintf("skirmish.max_enemies (%d) must be >= min_enemies (%d)", s.MaxEnemies, s.MinEnemies))
	}
	if s.PlayerWeapon == "" {
		errs = append(errs, "skirmish.player_weapon must not be empty")
	}
	hp := map[string]int{"head": s.PlayerHP.Head, "thorax": s.PlayerHP.Thorax, "arm": s.PlayerHP.Arm, "leg": s.PlayerHP.Leg}
	for _, part := range []string{"head", "thorax", "arm", "leg"} {
		if hp[part] <= 0 {
			errs = append(errs, fmt.Sprintf("skirmish.player_hp.%s must be > 0, got %d", part, hp[part]))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path skips the file and uses
// defaults plus environment overrides.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// Default returns the built-in defaults with environment overrides applied.
//
// Postcondition: Returns a valid Config or a non-nil error (only possible
// when an environment override is invalid).
func Default() (Config, error) {
	return Load("")
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	// Environment variable overrides with FIREFIGHT_ prefix
	v.SetEnvPrefix("FIREFIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", 0)
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", ":9100")

	v.SetDefault("content.weapons_dir", "")
	v.SetDefault("content.items_dir", "")
	v.SetDefault("content.enemies_dir", "")
	v.SetDefault("content.scripts_dir", "")
	v.SetDefault("content.script_instruction_limit", 100_000)

	v.SetDefault("combat.cover_pierce_chance", 0.30)
	v.SetDefault("combat.cover_break_on_hit_chance", 0.50)
	v.SetDefault("combat.stray_shot_chance", 0.30)
	v.SetDefault("combat.flank_chance", 0.35)
	v.SetDefault("combat.flank_turns", 2)
	v.SetDefault("combat.flee_chance", 0.50)
	v.SetDefault("combat.player_cover_accuracy", 0.75)
	v.SetDefault("combat.overkill_damage", 9999)
	v.SetDefault("combat.head_shot_chance", 0.20)
	v.SetDefault("combat.leg_shot_chance", 0.30)
	v.SetDefault("combat.arm_shot_chance", 0.30)

	v.SetDefault("skirmish.min_enemies", 1)
	v.SetDefault("skirmish.max_enemies", 3)
	v.SetDefault("skirmish.player_name", "")
	v.SetDefault("skirmish.player_weapon", "pistol")
	v.SetDefault("skirmish.player_hp.head", 50)
	v.SetDefault("skirmish.player_hp.thorax", 200)
	v.SetDefault("skirmish.player_hp.arm", 150)
	v.SetDefault("skirmish.player_hp.leg", 150)
	v.SetDefault("skirmish.seed", 0)
}

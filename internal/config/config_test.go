package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Telnet: TelnetConfig{
			Host:         "0.0.0.0",
			Port:         4000,
			ReadTimeout:  5 * time.Minute,
			WriteTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{Enabled: true, Addr: ":9100"},
		Combat: CombatConfig{
			CoverPierceChance:     0.30,
			CoverBreakOnHitChance: 0.50,
			StrayShotChance:       0.30,
			FlankChance:           0.35,
			FlankTurns:            2,
			FleeChance:            0.50,
			PlayerCoverAccuracy:   0.75,
			OverkillDamage:        9999,
			HeadShotChance:        0.20,
			LegShotChance:         0.30,
			ArmShotChance:         0.30,
		},
		Skirmish: SkirmishConfig{
			MinEnemies:   1,
			MaxEnemies:   3,
			PlayerWeapon: "pistol",
			PlayerHP:     HPConfig{Head: 50, Thorax: 200, Arm: 150, Leg: 150},
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestTelnetAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:4000", cfg.Telnet.Addr())
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, validConfig().Combat, cfg.Combat)
	assert.Equal(t, 4000, cfg.Telnet.Port)
	assert.Zero(t, cfg.Telnet.ReadTimeout, "sessions wait indefinitely for input by default")
	assert.Equal(t, 100_000, cfg.Content.ScriptInstructionLimit)
	assert.Equal(t, "pistol", cfg.Skirmish.PlayerWeapon)
	assert.Equal(t, 200, cfg.Skirmish.PlayerHP.Thorax)
	assert.Empty(t, cfg.Content.EnemiesDir)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
telnet:
  host: 127.0.0.1
  port: 4001
  read_timeout: 1m
  write_timeout: 10s
logging:
  level: debug
  format: console
combat:
  flee_chance: 0.25
  flank_turns: 1
skirmish:
  max_enemies: 5
  player_weapon: rifle
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4001, cfg.Telnet.Port)
	assert.Equal(t, time.Minute, cfg.Telnet.ReadTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 0.25, cfg.Combat.FleeChance)
	assert.Equal(t, 1, cfg.Combat.FlankTurns)
	assert.Equal(t, 0.30, cfg.Combat.CoverPierceChance, "unset keys keep their defaults")
	assert.Equal(t, 5, cfg.Skirmish.MaxEnemies)
	assert.Equal(t, "rifle", cfg.Skirmish.PlayerWeapon)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FIREFIGHT_COMBAT_FLEE_CHANCE", "0.9")
	t.Setenv("FIREFIGHT_TELNET_PORT", "4500")
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Combat.FleeChance)
	assert.Equal(t, 4500, cfg.Telnet.Port)
}

func TestLoad_InvalidEnvOverrideFailsValidation(t *testing.T) {
	t.Setenv("FIREFIGHT_COMBAT_FLANK_CHANCE", "1.5")
	_, err := Default()
	assert.ErrorContains(t, err, "combat.flank_chance")
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateTelnetPort(t *testing.T) {
	cfg := validConfig()
	cfg.Telnet.Port = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateMetricsAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Addr = ""
	assert.Error(t, cfg.Validate())
	cfg.Metrics.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestValidateSkirmish(t *testing.T) {
	cfg := validConfig()
	cfg.Skirmish.MinEnemies = 4
	assert.ErrorContains(t, cfg.Validate(), "max_enemies")

	cfg = validConfig()
	cfg.Skirmish.PlayerHP.Leg = 0
	assert.ErrorContains(t, cfg.Validate(), "player_hp.leg")
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Combat.FlankTurns = 3
	cfg.Combat.OverkillDamage = 0
	cfg.Telnet.Port = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "combat.flank_turns")
	assert.Contains(t, err.Error(), "combat.overkill_damage")
	assert.Contains(t, err.Error(), "telnet.port")
}

// Property-based tests

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Telnet.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyProbabilityRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.Float64Range(-2, 3).Draw(t, "p")
		cfg := validConfig()
		cfg.Combat.StrayShotChance = p
		err := cfg.Validate()
		if (p >= 0 && p <= 1) != (err == nil) {
			t.Fatalf("stray_shot_chance=%v: validate returned %v", p, err)
		}
	})
}

func TestPropertyEnemyRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.IntRange(1, 10).Draw(t, "min")
		hi := rapid.IntRange(lo, 20).Draw(t, "max")
		cfg := validConfig()
		cfg.Skirmish.MinEnemies, cfg.Skirmish.MaxEnemies = lo, hi
		if err := cfg.Validate(); err != nil {
			t.Fatalf("min=%d max=%d rejected: %v", lo, hi, err)
		}
	})
}

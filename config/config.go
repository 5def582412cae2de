// Package config loads command settings from an optional file, TANKS_*
// environment variables and defaults, in increasing order of precedence:
// defaults, file, environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/brensch/tanks/rules"
)

type Engine struct {
	ReloadTicks          int  `mapstructure:"reloadTicks"`
	WrapForward          bool `mapstructure:"wrapForward"`
	ShellStarvationTicks int  `mapstructure:"shellStarvationTicks"`
}

type Strategy struct {
	Player1 string `mapstructure:"player1"`
	Player2 string `mapstructure:"player2"`
}

type Archive struct {
	// Dir receives parquet turn archives; empty disables archiving.
	Dir string `mapstructure:"dir"`
}

type Ledger struct {
	// Path is the sqlite results database; empty disables the ledger.
	Path string `mapstructure:"path"`
}

type Tournament struct {
	Workers   int    `mapstructure:"workers"`
	PlayedLog string `mapstructure:"playedLog"`
}

type Serve struct {
	Addr         string        `mapstructure:"addr"`
	TickInterval time.Duration `mapstructure:"tickInterval"`
}

type Config struct {
	LogLevel   string     `mapstructure:"logLevel"`
	LogFormat  string     `mapstructure:"logFormat"`
	Engine     Engine     `mapstructure:"engine"`
	Strategy   Strategy   `mapstructure:"strategy"`
	Archive    Archive    `mapstructure:"archive"`
	Ledger     Ledger     `mapstructure:"ledger"`
	Tournament Tournament `mapstructure:"tournament"`
	Serve      Serve      `mapstructure:"serve"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "text")

	v.SetDefault("engine.reloadTicks", rules.DefaultReloadTicks)
	v.SetDefault("engine.wrapForward", true)
	v.SetDefault("engine.shellStarvationTicks", 0)

	v.SetDefault("strategy.player1", "aggressive")
	v.SetDefault("strategy.player2", "evasive")

	v.SetDefault("archive.dir", "")
	v.SetDefault("ledger.path", "")

	v.SetDefault("tournament.workers", 4)
	v.SetDefault("tournament.playedLog", "tournament/played.log")

	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.tickInterval", 250*time.Millisecond)
}

// Load reads configuration. path may be empty, in which case only defaults
// and the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TANKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Engine.ReloadTicks < 0 {
		return fmt.Errorf("engine.reloadTicks must not be negative, got %d", c.Engine.ReloadTicks)
	}
	if c.Engine.ShellStarvationTicks < 0 {
		return fmt.Errorf("engine.shellStarvationTicks must not be negative, got %d", c.Engine.ShellStarvationTicks)
	}
	if c.Tournament.Workers < 1 {
		return fmt.Errorf("tournament.workers must be at least 1, got %d", c.Tournament.Workers)
	}
	return nil
}

// Settings builds engine settings for a map's limits.
func (c Config) Settings(maxSteps, numShells int) rules.Settings {
	s := rules.DefaultSettings(maxSteps, numShells)
	s.ReloadTicks = c.Engine.ReloadTicks
	s.WrapForward = c.Engine.WrapForward
	s.ShellStarvationTicks = c.Engine.ShellStarvationTicks
	return s
}

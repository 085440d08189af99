// Package config loads drill settings from evacsim.yaml, an optional .env
// file and EVAC_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in a project directory.
const FileName = "evacsim.yaml"

var validate = validator.New()

// Config holds the tunables of a drill and the outer surfaces.
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval" json:"tick_interval" validate:"gt=0"`
	Seed         int64         `yaml:"seed" json:"seed"` // 0 picks a time-based seed
	SpawnMargin  float64       `yaml:"spawn_margin" json:"spawn_margin" validate:"gte=0,lte=5"`
	ExitTarget   string        `yaml:"exit_target" json:"exit_target" validate:"oneof=area door"`
	Workers      int           `yaml:"workers" json:"workers" validate:"gte=1,lte=256"`
	MaxTicks     int           `yaml:"max_ticks" json:"max_ticks" validate:"gte=0"` // 0 is unbounded
	Port         int           `yaml:"port" json:"port" validate:"gte=1,lte=65535"`
	DBPath       string        `yaml:"db_path" json:"db_path"` // empty disables run history
	Profiles     string        `yaml:"profiles" json:"profiles"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TickInterval: 50 * time.Millisecond,
		SpawnMargin:  0.25,
		ExitTarget:   "area",
		Workers:      1,
		Port:         3000,
		Profiles:     "profiles.yaml",
	}
}

// Load reads the project's config file if present, overlays the project's
// .env file and the process environment, and validates the result.
func Load(dir string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("reading %s: %w", FileName, err)
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config %s: failed %q (value %v)", e.Field(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ProfilesPath resolves the profile catalog path against the project dir.
func (c Config) ProfilesPath(dir string) string {
	if c.Profiles == "" || filepath.IsAbs(c.Profiles) {
		return c.Profiles
	}
	return filepath.Join(dir, c.Profiles)
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup("EVAC_TICK_INTERVAL"); ok {
		d, perr := time.ParseDuration(v)
		if perr != nil {
			return fmt.Errorf("EVAC_TICK_INTERVAL: %w", perr)
		}
		c.TickInterval = d
	}
	if v, ok := lookup("EVAC_SEED"); ok {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			return fmt.Errorf("EVAC_SEED: %w", perr)
		}
		c.Seed = n
	}
	if v, ok := lookup("EVAC_SPAWN_MARGIN"); ok {
		m, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("EVAC_SPAWN_MARGIN: %w", perr)
		}
		c.SpawnMargin = m
	}
	str("EVAC_EXIT_TARGET", &c.ExitTarget)
	str("EVAC_DB_PATH", &c.DBPath)
	str("EVAC_PROFILES", &c.Profiles)
	num("EVAC_WORKERS", &c.Workers)
	num("EVAC_MAX_TICKS", &c.MaxTicks)
	num("EVAC_PORT", &c.Port)
	return err
}

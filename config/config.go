// Package config loads the runtime settings from defaults, the environment
// (optionally seeded from a .env file) and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvPipe     = "VIZTRIS_PIPE"
	EnvPipeCtrl = "VIZTRIS_PIPE_CTRL"
	EnvDelay    = "VIZTRIS_DELAY"
	EnvColor    = "VIZTRIS_COLOR"
	EnvShowHelp = "VIZTRIS_SHOW_HELP"
	EnvShowNext = "VIZTRIS_SHOW_NEXT"
	EnvLogFile  = "VIZTRIS_LOG_FILE"
	EnvLogLevel = "VIZTRIS_LOG_LEVEL"
	EnvSeed     = "VIZTRIS_SEED"
)

// DefaultDotEnv is the optional file seeding the environment.
const DefaultDotEnv = ".env"

type Config struct {
	// Pipe is the external control-input channel.
	Pipe string
	// PipeCtrl is the control-output channel receiving the keyboard tap.
	PipeCtrl  string
	FallDelay time.Duration
	Color     bool
	ShowHelp  bool
	ShowNext  bool
	LogFile   string
	LogLevel  log.Level
	// Seed for the piece generator. Zero picks a time based seed.
	Seed uint64
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Pipe:      "test-pipe",
		PipeCtrl:  "test-pipe-ctrl",
		FallDelay: time.Second,
		Color:     true,
		ShowHelp:  true,
		ShowNext:  true,
		LogFile:   "viztris.log",
		LogLevel:  log.InfoLevel,
	}
}

// Load reads the configuration for the process: .env in the working
// directory, the process environment, then args (without the program name).
func Load(args []string) (Config, error) {
	return load(args, DefaultDotEnv, os.LookupEnv)
}

func load(args []string, dotEnv string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()

	fileVars, err := godotenv.Read(dotEnv)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read %s: %w", dotEnv, err)
	}
	lookup := func(name string) (string, bool) {
		if v, ok := lookupEnv(name); ok {
			return v, true
		}
		v, ok := fileVars[name]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	if err := cfg.applyFlags(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPipe); ok {
		c.Pipe = v
	}
	if v, ok := lookup(EnvPipeCtrl); ok {
		c.PipeCtrl = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}

	var err error
	if v, ok := lookup(EnvDelay); ok {
		if c.FallDelay, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", EnvDelay, err)
		}
	}
	for name, dst := range map[string]*bool{EnvColor: &c.Color, EnvShowHelp: &c.ShowHelp, EnvShowNext: &c.ShowNext} {
		if v, ok := lookup(name); ok {
			if *dst, err = strconv.ParseBool(v); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	if v, ok := lookup(EnvLogLevel); ok {
		if c.LogLevel, err = log.ParseLevel(v); err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := lookup(EnvSeed); ok {
		if c.Seed, err = strconv.ParseUint(v, 10, 64); err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
	}
	return nil
}

func (c *Config) applyFlags(args []string) error {
	flags := flag.NewFlagSet("viztris", flag.ContinueOnError)
	flags.StringVar(&c.Pipe, "pipe", c.Pipe, "Path of the external control-input channel.")
	flags.StringVar(&c.PipeCtrl, "pipe-ctrl", c.PipeCtrl, "Path of the control-output channel.")
	flags.DurationVar(&c.FallDelay, "delay", c.FallDelay, "The initial fall delay.")
	flags.BoolVar(&c.Color, "color", c.Color, "Draw in color.")
	flags.BoolVar(&c.ShowHelp, "show-help", c.ShowHelp, "Show the key help at start.")
	flags.BoolVar(&c.ShowNext, "show-next", c.ShowNext, "Show the next piece at start.")
	flags.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file; the terminal is owned by the game.")
	level := flags.String("log-level", c.LogLevel.String(), "Log level.")
	flags.Uint64Var(&c.Seed, "seed", c.Seed, "Seed for the piece generator, 0 for a time based seed.")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args())
	}

	parsed, err := log.ParseLevel(*level)
	if err != nil {
		return fmt.Errorf("-log-level: %w", err)
	}
	c.LogLevel = parsed
	return nil
}

// Validate reports settings the game cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Pipe == "":
		return errors.New("control-input channel path is empty")
	case c.PipeCtrl == "":
		return errors.New("control-output channel path is empty")
	case c.Pipe == c.PipeCtrl:
		return fmt.Errorf("channels must differ, both are %q", c.Pipe)
	case c.FallDelay <= 0:
		return fmt.Errorf("fall delay must be positive, got %s", c.FallDelay)
	case c.LogFile == "":
		return errors.New("log file path is empty")
	}
	return nil
}

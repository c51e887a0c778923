package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the scan and output settings. Values are layered: defaults,
// then the TOML file, then .env, then the process environment. Command-line
// flags are applied on top by the caller.
type Config struct {
	ProcRoot  string `toml:"proc_root" env:"SOCKOWNER_PROC_ROOT"`
	OwnedOnly bool   `toml:"owned_only" env:"SOCKOWNER_OWNED_ONLY"`
	LogLevel  string `toml:"log_level" env:"SOCKOWNER_LOG_LEVEL"`
	Color     string `toml:"color" env:"SOCKOWNER_COLOR"`
	Format    string `toml:"format" env:"SOCKOWNER_FORMAT"`
}

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	colors    = []string{"auto", "always", "never"}
	formats   = []string{"table", "json"}
)

func Default() Config {
	return Config{
		ProcRoot:  "/proc",
		OwnedOnly: true,
		LogLevel:  "warn",
		Color:     "auto",
		Format:    "table",
	}
}

// Load builds the configuration. path may be empty; a .env file in the
// working directory is optional. The result is not validated, so that command
// line flags can still replace bad values; call Validate once they are applied.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, dotenv string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	environ, err := environment(dotenv)
	if err != nil {
		return Config{}, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// environment merges the dotenv file under the real environment, which wins.
func environment(dotenv string) (map[string]string, error) {
	merged, err := godotenv.Read(dotenv)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenv, err)
		}
		merged = make(map[string]string)
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	return merged, nil
}

func (c Config) Validate() error {
	if c.ProcRoot == "" {
		return errors.New("proc root must not be empty")
	}
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (want one of %v)", c.LogLevel, logLevels)
	}
	if !slices.Contains(colors, c.Color) {
		return fmt.Errorf("invalid color mode %q (want one of %v)", c.Color, colors)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %v)", c.Format, formats)
	}
	return nil
}

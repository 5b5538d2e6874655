package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/harrylevesque/idqr/internal/utils"
)

// DefaultFileName is looked up in the project root when no path is given.
const DefaultFileName = "idqr.toml"

// Config : top-level configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
	Parser  ParserConfig  `toml:"parser"`
	Scanner ScannerConfig `toml:"scanner"`
	Output  OutputConfig  `toml:"output"`
}

type ServerConfig struct {
	Addr            string `toml:"addr"`
	MaxPayloadBytes int64  `toml:"max_payload_bytes"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

type ParserConfig struct {
	// KeepExtraFields captures delimited fields past the fifth position.
	KeepExtraFields bool `toml:"keep_extra_fields"`
}

type ScannerConfig struct {
	MaxScansPerSecond float64 `toml:"max_scans_per_second"`
	StopAfterFirst    bool    `toml:"stop_after_first"`
}

type OutputConfig struct {
	Format  string `toml:"format"`
	ShowRaw bool   `toml:"show_raw"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			MaxPayloadBytes: 16 << 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Scanner: ScannerConfig{
			MaxScansPerSecond: 5,
			StopAfterFirst:    true,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Load reads the TOML file at path on top of the defaults, then applies
// environment overrides. An empty path means IDQR_CONFIG, then idqr.toml in
// the project root; a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if env := os.Getenv("IDQR_CONFIG"); env != "" {
			path, explicit = env, true
		} else {
			path = filepath.Join(utils.GetProjectRoot(), DefaultFileName)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("IDQR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("IDQR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("IDQR_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("IDQR_MAX_SCANS_PER_SECOND"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("IDQR_MAX_SCANS_PER_SECOND: %w", err)
		}
		c.Scanner.MaxScansPerSecond = f
	}
	return nil
}

// Validate rejects values the services cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.MaxPayloadBytes <= 0 {
		return fmt.Errorf("server.max_payload_bytes must be positive, got %d", c.Server.MaxPayloadBytes)
	}
	if c.Scanner.MaxScansPerSecond <= 0 {
		return fmt.Errorf("scanner.max_scans_per_second must be positive, got %v", c.Scanner.MaxScansPerSecond)
	}
	if _, err := utils.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}
	switch c.Output.Format {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be 'table', 'json' or 'yaml', got %q", c.Output.Format)
	}
	return nil
}

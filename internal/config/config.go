package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/teamcutter/patches/internal/detector"
)

type Config struct {
	CellarDir      string `toml:"cellar_dir"`
	StateDir       string `toml:"state_dir"`
	HistoryBackend string `toml:"history_backend"`
	HistoryDB      string `toml:"history_db"`
	HistoryFile    string `toml:"history_file"`
	RecordHistory  bool   `toml:"record_history"`
	MaxParallel    int    `toml:"max_parallel"`
}

// DefaultPath is ~/.patches/config.toml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".patches", "config.toml")
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".patches")

	return &Config{
		CellarDir:      detector.DefaultBaseDir,
		StateDir:       base,
		HistoryBackend: "sqlite",
		HistoryDB:      filepath.Join(base, "history.db"),
		HistoryFile:    filepath.Join(base, "history.json"),
		RecordHistory:  true,
		MaxParallel:    8,
	}
}

// Load reads the config at path, falling back to DefaultPath when path is
// empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	// history paths follow a relocated state_dir unless set explicitly
	if md.IsDefined("state_dir") {
		if !md.IsDefined("history_db") {
			cfg.HistoryDB = filepath.Join(cfg.StateDir, "history.db")
		}
		if !md.IsDefined("history_file") {
			cfg.HistoryFile = filepath.Join(cfg.StateDir, "history.json")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxParallel < 1 {
		return fmt.Errorf("max_parallel must be at least 1, got %d", c.MaxParallel)
	}
	switch c.HistoryBackend {
	case "sqlite", "json":
	default:
		return fmt.Errorf("history_backend must be \"sqlite\" or \"json\", got %q", c.HistoryBackend)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config path: home directory unknown")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

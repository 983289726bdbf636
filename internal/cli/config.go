package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/7eVeNcO/semtk/pkg/errors"
	"github.com/7eVeNcO/semtk/pkg/store"
)

// Config is the contents of config.toml.
//
//	log_level = "debug"
//
//	[store]
//	backend = "sqlite"
//	path = "/var/lib/semtk/semtk.db"
type Config struct {
	LogLevel string       `toml:"log_level"`
	Store    store.Config `toml:"store"`
}

// defaultConfig stores records as files under the data directory.
func defaultConfig() Config {
	return Config{Store: store.Config{
		Backend: store.BackendFile,
		Path:    defaultStorePath(store.BackendFile),
	}}
}

// defaultStorePath places local backends under the data directory.
func defaultStorePath(backend string) string {
	dir, err := dataDir()
	if err != nil {
		return ""
	}
	if backend == store.BackendSQLite {
		return filepath.Join(dir, "semtk.db")
	}
	return filepath.Join(dir, "store")
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error. Unknown keys are returned so the caller can warn about them.
func loadConfig(path string) (Config, []string, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil, nil
		}
		return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if !md.IsDefined("store", "path") {
		cfg.Store.Path = defaultStorePath(cfg.Store.Backend)
	}
	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "log_level")
		}
	}

	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	return cfg, unknown, nil
}

// configPath returns $XDG_CONFIG_HOME/semtk/config.toml (~/.config/semtk/config.toml).
func configPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// dataDir returns $XDG_DATA_HOME/semtk (~/.local/share/semtk).
func dataDir() (string, error) {
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())
	return cmd
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.ConfigPath
			if path == "" {
				var err error
				if path, err = configPath(); err != nil {
					return fmt.Errorf("get config path: %w", err)
				}
			}
			fmt.Println(path)
			return nil
		},
	}
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := c.Config.LogLevel
			if level == "" {
				level = c.Logger.GetLevel().String()
			}
			printKeyValue("log_level", level)
			printKeyValue("store", c.Config.Store.String())
			if p := strings.TrimSpace(c.Config.Store.Prefix); p != "" {
				printKeyValue("prefix", p)
			}
			return nil
		},
	}
}

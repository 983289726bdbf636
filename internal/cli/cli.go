// Package cli implements the semtk command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/7eVeNcO/semtk/pkg/buildinfo"
	"github.com/7eVeNcO/semtk/pkg/document"
	"github.com/7eVeNcO/semtk/pkg/store"
)

// appName is the application name used for directories and display.
const appName = "semtk"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string
	// Config is loaded before any subcommand runs.
	Config Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "semtk builds and edits portable graph-query documents",
		Long:         `semtk bundles a triple-store connection, a semantic query graph and an import mapping into one portable JSON document, and stores those documents by id.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/semtk/config.toml)")

	root.AddCommand(c.docCommand())
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	path := c.ConfigPath
	if path == "" {
		if p, err := configPath(); err == nil {
			path = p
		}
	}

	cfg, unknown, err := loadConfig(path)
	if err != nil {
		return err
	}
	c.Config = cfg

	// --verbose wins over the config file.
	if cfg.LogLevel != "" && c.Logger.GetLevel() != log.DebugLevel {
		level, _ := log.ParseLevel(cfg.LogLevel)
		c.SetLogLevel(level)
	}
	for _, k := range unknown {
		c.Logger.Warn("Unknown config key", "key", k, "file", path)
	}
	c.Logger.Debug("Loaded config", "file", path, "store", cfg.Store.String())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// openStore opens the configured store. Remote backends show a spinner
// while connecting.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	logger := loggerFromContext(ctx)
	logger.Debug("Opening store", "store", cfg.String())

	if cfg.Backend != store.BackendRedis && cfg.Backend != store.BackendMongo {
		return store.Open(ctx, cfg)
	}

	spinner := newSpinnerWithContext(ctx, "Connecting to "+cfg.Backend+"...")
	spinner.Start()
	st, err := store.Open(ctx, cfg)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return st, nil
}

// readDocument reads a document from path, or stdin when path is "-".
func readDocument(path string) (*document.Document, error) {
	if path == "-" {
		return document.Read(os.Stdin)
	}
	return document.ReadFile(path)
}

// writeDocument writes doc to path, or stdout when path is "" or "-".
func writeDocument(doc *document.Document, path string) error {
	if path == "" || path == "-" {
		return doc.Write(os.Stdout)
	}
	if err := doc.WriteFile(path); err != nil {
		return err
	}
	printSuccess("Wrote document")
	printFile(path)
	return nil
}

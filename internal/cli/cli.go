// Package cli implements the mortar command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mortar/pkg/buildinfo"
	"github.com/matzehuels/mortar/pkg/config"
	"github.com/matzehuels/mortar/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mortar"

	// configFileName is the file looked up in the config directory.
	configFileName = "config.toml"

	// stdinName is the input argument that reads a sketch from stdin.
	stdinName = "-"
)

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

	configPath string
	stdin      io.Reader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		stdin:  os.Stdin,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Mortar lays out structured documents as walls of text",
		Long: `Mortar lays out structured documents in a terminal. Documents are written as
sketches of atoms, arrays and text; mortar fits them to a width, breaking
arrays across lines by precedence and aligning columns across lines.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mortar/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner returns a pipeline runner that caches rendered artifacts in
// the user cache directory unless noCache is set.
func (c *CLI) newRunner(noCache bool) *pipeline.Runner {
	r := pipeline.NewRunner(c.Logger)
	if noCache {
		return r
	}
	fc, err := openCache()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return r
	}
	r.Cache = fc
	return r
}

// loadConfig loads the --config file, or the user's config file when one
// exists, or the defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.configPath
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err != nil {
			return config.Default(), nil
		}
	}
	c.Logger.Debug("loading config", "path", path)
	return config.Load(path)
}

// inputOptions returns pipeline options reading the sketch named by arg.
func (c *CLI) inputOptions(arg string) (pipeline.Options, error) {
	if arg != stdinName {
		return pipeline.Options{Path: arg}, nil
	}
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Source: string(data), Name: "<stdin>"}, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns $XDG_CONFIG_HOME/mortar, or ~/.config/mortar.
func configDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// cacheDir returns $XDG_CACHE_HOME/mortar, or ~/.cache/mortar.
func cacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatText}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/attire/internal/config"
	"github.com/felixgeelhaar/attire/internal/generator"
	"github.com/felixgeelhaar/attire/internal/log"
	"github.com/felixgeelhaar/attire/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "attire",
	Short: "Virtual try-on pipeline",
	Long: `attire composes outfits on a photographed model using an image
generation service. Garments are layered onto a base model photo one at a
time; every generated look is cached by its outfit signature and pose, so
revisiting a previous combination or pose is instant.`,
}

var cfgFile string

// ExecuteContext runs the root command with the given context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.attire/attire.yaml)")
}

// loadConfig loads the configured file, the default file when it exists, or
// the built-in defaults.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}

	home, err := os.UserHomeDir()
	if err == nil {
		path := filepath.Join(home, ".attire", "attire.yaml")
		if _, err := os.Stat(path); err == nil {
			return config.Load(path)
		}
	}
	return config.Default(), nil
}

// newLogger builds and installs the process logger from configuration.
func newLogger(cfg *config.Config) *log.Logger {
	logger := log.New(log.Config{
		Level:          log.ParseLevel(cfg.Log.Level),
		Format:         log.ParseFormat(cfg.Log.Format),
		Output:         log.OutputStderr(),
		ServiceName:    "attire",
		ServiceVersion: version.GetInfo().Version,
	})
	log.SetDefaultLogger(logger)
	return logger
}

// newClient builds the generation client from configuration. The scripted
// client needs no credentials and produces deterministic references.
func newClient(cfg *config.Config, scripted bool) (generator.Client, error) {
	if scripted || cfg.Generator.Scripted {
		return generator.NewScriptedClient(), nil
	}
	return generator.NewGeminiClient(generator.GeminiConfig{
		APIKey:  cfg.Generator.APIKey,
		BaseURL: cfg.Generator.BaseURL,
		Model:   cfg.Generator.Model,
		Timeout: cfg.Generator.Timeout(),
	})
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"

	"github.com/spf13/cobra"

	"github.com/dejo1307/objchdr/internal/cache"
	"github.com/dejo1307/objchdr/internal/config"
	"github.com/dejo1307/objchdr/internal/engine"
	"github.com/dejo1307/objchdr/internal/explainers/cycles"
	"github.com/dejo1307/objchdr/internal/explainers/unresolved"
	"github.com/dejo1307/objchdr/internal/renderers/gobind"
	"github.com/dejo1307/objchdr/internal/renderers/jsonout"
	"github.com/dejo1307/objchdr/internal/renderers/summary"
)

var (
	cfgPath  string
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "objchdr",
	Short: "Extract classes and enums from Objective-C headers",
	Long: `objchdr scans Objective-C header files for @interface declarations
(name, superclass, properties) and NS_ENUM/NS_OPTIONS declarations, and
serves them as JSON, a markdown digest, Go bindings, or over MCP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "objchdr.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Header directory (overrides the config's repo)")
}

// loadConfig reads the config file, falling back to defaults when it does
// not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("[main] warning: %v, using defaults", err)
		cfg = config.Default()
	case err != nil:
		return nil, err
	}
	if repoFlag != "" {
		cfg.Repo = repoFlag
	}
	return cfg, nil
}

// newEngine builds an engine with a fresh cache and every explainer and
// renderer registered.
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	eng, err := engine.New(cfg, cache.New())
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	eng.RegisterExplainer(cycles.New())
	eng.RegisterExplainer(unresolved.New())
	eng.RegisterRenderer(jsonout.New(cfg.Output.ClassesFile, cfg.Output.EnumsFile, cfg.Output.InsightsFile))
	eng.RegisterRenderer(summary.New(cfg.Output.SummaryFile, cfg.Output.MaxSummaryChars))
	eng.RegisterRenderer(gobind.New(cfg.GoBind.Package, cfg.GoBind.File))
	return eng, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

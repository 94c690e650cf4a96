package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config represents the objchdr.yaml (or objchdr.toml) configuration.
type Config struct {
	Repo       string        `yaml:"repo" toml:"repo" validate:"required"`
	Ignore     []string      `yaml:"ignore" toml:"ignore"`
	Workers    int           `yaml:"workers" toml:"workers" validate:"min=1"`
	Renderers  []string      `yaml:"renderers" toml:"renderers" validate:"dive,oneof=json summary gobind"`
	Explainers []string      `yaml:"explainers" toml:"explainers" validate:"dive,oneof=cycles unresolved"`
	Output     OutputConfig  `yaml:"output" toml:"output"`
	GoBind     GoBindConfig  `yaml:"gobind" toml:"gobind"`
	Locator    LocatorConfig `yaml:"locator" toml:"locator"`
}

// OutputConfig controls where and how output artifacts are generated.
type OutputConfig struct {
	Dir             string `yaml:"dir" toml:"dir" validate:"required"`
	ClassesFile     string `yaml:"classes_file" toml:"classes_file" validate:"required,excludesall=/"`
	EnumsFile       string `yaml:"enums_file" toml:"enums_file" validate:"required,excludesall=/"`
	SummaryFile     string `yaml:"summary_file" toml:"summary_file" validate:"required,excludesall=/"`
	InsightsFile    string `yaml:"insights_file" toml:"insights_file" validate:"required,excludesall=/"`
	MaxSummaryChars int    `yaml:"max_summary_chars" toml:"max_summary_chars" validate:"min=1000"`
}

// GoBindConfig controls the generated Go bindings.
type GoBindConfig struct {
	Package string `yaml:"package" toml:"package" validate:"required,goident"`
	File    string `yaml:"file" toml:"file" validate:"required,excludesall=/"`
}

// LocatorConfig controls how a type's header file is located.
type LocatorConfig struct {
	// UseExternal enables the fd and rg helpers when they are on PATH.
	UseExternal bool `yaml:"use_external" toml:"use_external"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Repo: ".",
		Ignore: []string{
			".git/**",
			"Pods/**",
			"Carthage/**",
			"build/**",
			"DerivedData/**",
			".objchdr/**",
		},
		Workers:    runtime.NumCPU(),
		Renderers:  []string{"json", "summary", "gobind"},
		Explainers: []string{"cycles", "unresolved"},
		Output: OutputConfig{
			Dir:             ".objchdr",
			ClassesFile:     "classes.json",
			EnumsFile:       "enums.json",
			SummaryFile:     "headers.md",
			InsightsFile:    "insights.json",
			MaxSummaryChars: 64000,
		},
		GoBind: GoBindConfig{
			Package: "objcmodels",
			File:    "bindings.go",
		},
		Locator: LocatorConfig{
			UseExternal: true,
		},
	}
}

// Load reads a configuration file from the given path. Files ending in
// .toml are decoded as TOML, anything else as YAML. Missing fields are filled
// with defaults and the result is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Ensure required defaults
	def := Default()
	if cfg.Repo == "" {
		cfg.Repo = def.Repo
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = def.Output.Dir
	}
	if cfg.Output.ClassesFile == "" {
		cfg.Output.ClassesFile = def.Output.ClassesFile
	}
	if cfg.Output.EnumsFile == "" {
		cfg.Output.EnumsFile = def.Output.EnumsFile
	}
	if cfg.Output.SummaryFile == "" {
		cfg.Output.SummaryFile = def.Output.SummaryFile
	}
	if cfg.Output.InsightsFile == "" {
		cfg.Output.InsightsFile = def.Output.InsightsFile
	}
	if cfg.Output.MaxSummaryChars == 0 {
		cfg.Output.MaxSummaryChars = def.Output.MaxSummaryChars
	}
	if cfg.GoBind.Package == "" {
		cfg.GoBind.Package = def.GoBind.Package
	}
	if cfg.GoBind.File == "" {
		cfg.GoBind.File = def.GoBind.File
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

var goIdentRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks field values: known renderer and explainer names, a
// positive worker count, plain artifact file names and a Go package name.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return goIdentRe.MatchString(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.Struct(c)
}

// IsRendererEnabled returns true if the named renderer is enabled.
func (c *Config) IsRendererEnabled(name string) bool {
	return contains(c.Renderers, name)
}

// IsExplainerEnabled returns true if the named explainer is enabled.
func (c *Config) IsExplainerEnabled(name string) bool {
	return contains(c.Explainers, name)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

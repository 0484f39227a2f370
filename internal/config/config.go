package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Specs          []string `koanf:"specs"`
	Output         string   `koanf:"output"`
	Format         string   `koanf:"format"`
	Server         string   `koanf:"server"`
	SkipValidation bool     `koanf:"skip-validation"`
	IncludeTags    []string `koanf:"include-tags"`
	ExcludeTags    []string `koanf:"exclude-tags"`
}

// BindFlags binds the generate command's flags.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringP("config", "c", "", "Config file path (default: toolapi.yaml)")
	flags.StringSliceP("spec", "s", nil, "OpenAPI spec file path (repeatable)")
	flags.StringP("output", "o", "", "Output directory for generated handles")
	flags.StringP("format", "f", "", "Output format: yaml, json")
	flags.String("server", "", "Base URL overriding server selection")
	flags.Bool("skip-validation", false, "Skip structural validation of the document")
	flags.StringSlice("include-tags", nil, "Tags to include (exclusive)")
	flags.StringSlice("exclude-tags", nil, "Tags to exclude")
	flags.Bool("dry-run", false, "Print handles without writing files")
}

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		if _, err := os.Stat("toolapi.yaml"); err == nil {
			configFile = "toolapi.yaml"
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Format == "" {
		cfg.Format = "yaml"
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if err := cfg.Validate(dryRun); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	if v, err := cmd.Flags().GetStringSlice("spec"); err == nil && len(v) > 0 {
		m["specs"] = v
	}
	if v, err := cmd.Flags().GetString("output"); err == nil && v != "" {
		m["output"] = v
	}
	if v, err := cmd.Flags().GetString("format"); err == nil && v != "" {
		m["format"] = v
	}
	if v, err := cmd.Flags().GetString("server"); err == nil && v != "" {
		m["server"] = v
	}
	if cmd.Flags().Changed("skip-validation") {
		v, _ := cmd.Flags().GetBool("skip-validation")
		m["skip-validation"] = v
	}
	if v, err := cmd.Flags().GetStringSlice("include-tags"); err == nil && len(v) > 0 {
		m["include-tags"] = v
	}
	if v, err := cmd.Flags().GetStringSlice("exclude-tags"); err == nil && len(v) > 0 {
		m["exclude-tags"] = v
	}

	return m
}

func (c *Config) Validate(dryRun bool) error {
	if len(c.Specs) == 0 {
		return fmt.Errorf("at least one spec file is required")
	}
	if c.Output == "" && !dryRun {
		return fmt.Errorf("output directory is required")
	}

	validFormats := map[string]bool{"yaml": true, "json": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (valid: yaml, json)", c.Format)
	}

	return nil
}

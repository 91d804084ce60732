package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/panbanda/revue/pkg/config"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a revue configuration file for syntax errors and invalid values.

Examples:
  revue config validate                 # Validates default config locations
  revue -c revue.toml config validate   # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration as TOML",
				Action: runConfigShow,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for configuration files",
				Action: runConfigSchema,
			},
		},
	}
}

func loadConfigResult(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

func runConfigValidate(c *cli.Context) error {
	w := c.App.Writer
	result, err := loadConfigResult(c)
	if err != nil {
		color.New(color.FgRed).Fprintln(w, "Configuration validation failed:")
		fmt.Fprintf(w, "  - %s\n", err)
		return err
	}

	if result.Source == "" {
		color.New(color.FgYellow).Fprintln(w, "No config file found. Default configuration is valid.")
		return nil
	}

	color.New(color.FgGreen).Fprintf(w, "Configuration valid: %s\n", result.Source)
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadConfigResult(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(w, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(w, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(w, string(content))
	return nil
}

func runConfigSchema(c *cli.Context) error {
	_, err := c.App.Writer.Write(config.Schema())
	return err
}

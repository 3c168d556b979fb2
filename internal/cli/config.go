package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-spectral/dsp/analyzer"
	"github.com/cwbudde/algo-spectral/dsp/window"
)

// fileConfig is the YAML layout read through viper. Keys match flag names;
// every flag of analyze and bars is listed so the file documents them all.
type fileConfig struct {
	LogLevel     string  `yaml:"log-level"`
	Output       string  `yaml:"output"`
	WindowLength int     `yaml:"window-length"`
	Window       string  `yaml:"window"`
	Scale        string  `yaml:"scale"`
	Reference    float64 `yaml:"reference"`
	MinDB        float64 `yaml:"min-db"`
	MaxDB        float64 `yaml:"max-db"`
	Smoothing    float64 `yaml:"smoothing"`

	// analyze
	Hop int `yaml:"hop"`

	// bars
	At    string  `yaml:"at"`
	Bands int     `yaml:"bands"`
	Width int     `yaml:"width"`
	FMin  float64 `yaml:"fmin"`
	FMax  float64 `yaml:"fmax"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		LogLevel:     "info",
		Output:       formatTable,
		WindowLength: 2048,
		Window:       window.TypeHann.String(),
		Scale:        analyzer.ScaleLinear.String(),
		Reference:    analyzer.DefaultReference,
		MinDB:        analyzer.DefaultMinDB,
		MaxDB:        analyzer.DefaultMaxDB,
		Hop:          0,
		At:           "0s",
		Bands:        defaultBands,
		Width:        defaultWidth,
		FMin:         defaultFMin,
		FMax:         defaultFMax,
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the spectral config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := appName + ".yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}
			a.log.Info("wrote config", zap.String("path", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func writeDefaultConfig(path string, force bool) error {
	data, err := yaml.Marshal(defaultFileConfig())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("create config: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

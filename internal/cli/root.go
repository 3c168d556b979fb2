// Package cli implements the spectral command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	appName   = "spectral"
	envPrefix = "SPECTRAL"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v   *viper.Viper
	log *zap.Logger

	configFile   string
	logLevel     string
	outputFormat string
}

// NewRootCommand builds a fresh command tree. Each call has its own viper
// instance so that tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:   appName,
		Short: "Offline front end for the real-time spectral analyzer",
		Long: `spectral runs WAV files through the same fixed-size analyzer the
browser visualizer uses: window, FFT, magnitude and normalization to [0, 1].

Flags can also be set in a YAML config file or through SPECTRAL_* environment
variables (for example SPECTRAL_WINDOW_LENGTH=4096).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "",
		"config file (default is ./spectral.yaml or $HOME/.config/spectral/spectral.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	root.PersistentFlags().StringVarP(&a.outputFormat, "output", "o", formatTable,
		"output format (table, json, yaml, csv)")

	root.AddCommand(
		newAnalyzeCommand(a),
		newBarsCommand(a),
		newWindowsCommand(a),
		newConfigCommand(a),
	)

	return root
}

// Execute runs the command tree against os.Args and returns the exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) initialize(cmd *cobra.Command) error {
	if err := a.readConfig(); err != nil {
		return err
	}
	if err := bindFlags(cmd, a.v); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	log, err := newLogger(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}
	a.log = log

	if used := a.v.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file", zap.String("path", used))
	}
	return nil
}

// readConfig loads the optional config file and enables environment lookup.
func (a *app) readConfig() error {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		a.v.SetConfigName(appName)
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bindFlags copies config and environment values into flags the user did not
// set explicitly, then binds every flag to v.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "config" {
			return
		}

		envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, envVar); err != nil {
			lastErr = err
		}

		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = fmt.Errorf("%s: %w", f.Name, err)
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// newLogger writes human-readable structured logs to w.
func newLogger(w io.Writer, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		lvl,
	)
	return zap.New(core).Named(appName), nil
}

package main

import (
	"fmt"
	"os"

	"github.com/aretw0/turtleshot/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "turtleshot",
	Short: "Turtleshot runs turtle-graphics programs and captures their output",
	Long: `Turtleshot executes a Logo program on a headless canvas, then writes the
cropped drawing, the text transcript and the run details next to each other
or as a single combined document.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML or JSON settings file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().String("ledger", "", "Run ledger (memory:, file:<dir>, sqlite:<path>, redis://...)")
}

// loadConfig reads --config and overlays every flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	flag := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	str("log-level", &cfg.LogLevel)
	str("log-format", &cfg.LogFormat)
	str("ledger", &cfg.Ledger)
	if flags.Lookup("file") != nil {
		str("file", &cfg.File)
		str("out", &cfg.Out)
		str("tag", &cfg.Tag)
		str("metrics-file", &cfg.MetricsFile)
		num("width", &cfg.Width)
		num("height", &cfg.Height)
		num("margin", &cfg.Margin)
		num("max-cycles", &cfg.MaxCycles)
		num("max-stack", &cfg.MaxStack)
		flag("combined", &cfg.Combined)
		flag("summary", &cfg.Summary)
	}
	if flags.Lookup("addr") != nil {
		str("addr", &cfg.Addr)
	}
	return cfg, nil
}

// addRunFlags registers the per-run flags. Defaults shown here are the
// built-in ones; only explicitly set flags override the config file.
func addRunFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringP("file", "f", d.File, "Program to run")
	fs.StringP("out", "o", d.Out, "Output prefix")
	fs.StringP("tag", "t", "", "Tag recorded in the run details")
	fs.Bool("combined", false, "Write a single document instead of separate files")
	fs.Int("width", d.Width, "Canvas width in pixels")
	fs.Int("height", d.Height, "Canvas height in pixels")
	fs.Int("margin", d.Margin, "Crop margin around the drawing")
	fs.Int("max-cycles", d.MaxCycles, "Interpreter cycle ceiling")
	fs.Int("max-stack", d.MaxStack, "Interpreter stack ceiling")
	fs.String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	fs.Bool("summary", false, "Print a summary table of the run")
	fs.BoolP("quiet", "q", false, "Suppress the status line")
}

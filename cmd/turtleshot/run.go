package main

import (
	"context"
	"os"

	"github.com/aretw0/turtleshot/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a program and write its artifacts",
	Long: `Runs a Logo program (from --file, the first argument, or stdin) and
writes <out>.png, <out>.txt and <out>.json, or a single <out> document with
--combined. The exit status is 0 on success, 1 when the run failed and its
failure was recorded, 2 when even the failure could not be persisted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("file") && len(args) > 0 {
			cfg.File = args[0]
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		status, err := cli.Execute(ctx, cli.RunOptions{
			Config: cfg,
			Stdout: cmd.OutOrStdout(),
			Exit:   os.Exit,
			Quiet:  quiet,
		})
		if err != nil {
			return err
		}
		if status != 0 {
			os.Exit(status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())

	// 'run' is the default when no command is given.
	addRunFlags(rootCmd.Flags())
	rootCmd.Args = runCmd.Args
	rootCmd.RunE = runCmd.RunE
}

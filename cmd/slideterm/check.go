package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.md>",
	Short: "Compile a presentation without presenting it",
	Long: `Compile a presentation and report the first error, if any. The exit
status is 2 when the presentation does not compile.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringP("theme", "t", "", "Theme to use when the presentation does not set one")
	checkCmd.Flags().Bool("strict", false, "Reject unknown front matter keys and unknown directives")

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving presentation path: %w", err)
	}

	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}

	logs, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()

	app := newApplication(cfg, path, logs.Logger)
	presentation, err := app.presentation.Load(cmd.Context(), path)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d slides, theme %s\n",
		args[0], presentation.SlideCount(), presentation.Theme.Name)
	return nil
}

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fredcamaral/slideterm/internal/adapters/secondary/logging"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	RunE:  runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, "")
	if err != nil {
		return err
	}

	logs, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logs.Close() }()

	app := newApplication(cfg, "", logs.Logger)
	themes, err := app.themes.ListThemes(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing themes: %w", err)
	}

	out := cmd.OutOrStdout()
	renderer := lipgloss.NewRenderer(out)
	nameStyle := renderer.NewStyle().Bold(true).Width(18)
	dimStyle := renderer.NewStyle().Faint(true)

	for _, info := range themes {
		detail := "built-in"
		if !info.BuiltIn {
			detail = info.Path
		}
		if info.Extends != "" {
			detail += ", extends " + info.Extends
		}

		marker := " "
		if info.Name == cfg.Theme.Name {
			marker = "*"
		}

		_, _ = fmt.Fprintf(out, "%s %s%s %s\n",
			marker, nameStyle.Render(info.Name), info.DisplayName, dimStyle.Render("("+detail+")"))
	}
	return nil
}

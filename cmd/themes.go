package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes [preset]",
	Short: "List theme presets, or preview one",
	Long: `List the theme presets accepted by theme.preset and --theme.

With a preset name, print every style name rendered in that preset with the
theme overrides from the config file applied.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range theme.Presets() {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return fmt.Errorf("writing output: %w", err)
				}
			}
			return nil
		}

		if err := applyColorMode(cfg.Render.Color); err != nil {
			return err
		}
		themeCfg := cfg.Theme
		themeCfg.Preset = args[0]
		th, err := theme.Load(themeCfg)
		if err != nil {
			return err
		}
		return previewTheme(out, th)
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func previewTheme(w io.Writer, th *theme.Theme) error {
	for _, id := range highlight.Styles() {
		name := id.String()
		line := th.Render(name, []highlight.Span{{Offset: 0, Length: len(name), Style: id}})
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

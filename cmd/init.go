package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/hilite/internal/config"
)

var (
	initGlobal bool
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file",
	Long: `Write a commented default config file to .hilite/config.yaml, or to
~/.config/hilite/config.yaml with --global, or to the --config path.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationConfig: configOptional},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := localConfigPath
		switch {
		case cfgFile != "":
			path = cfgFile
		case initGlobal:
			path = config.DefaultConfigPath()
			if path == "" {
				return fmt.Errorf("resolving home directory for --global")
			}
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/hilite/config.yaml")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/language"
	"github.com/zjrosen/hilite/internal/log"
)

var languagesSave bool

var languagesCmd = &cobra.Command{
	Use:   "languages [name]",
	Short: "List languages, or print one as config YAML",
	Long: `List the known languages and the extensions they claim.

With a name, print that language's rules in the config file format so they
can be copied into the languages section and customized. --save writes them
into the config file directly, replacing an entry with the same name.

Examples:
  hilite languages
  hilite languages python
  hilite languages python --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnvironment(cfg, "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			if languagesSave {
				return fmt.Errorf("--save needs a language name")
			}
			return listLanguages(out, env.languages)
		}

		def, ok := env.languages.Definition(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", language.ErrUnknownLanguage, args[0])
		}
		lc := language.ToConfig(def)

		if languagesSave {
			path := configFilePath()
			if err := config.SaveLanguage(path, lc); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Saved %s to %s\n", lc.Name, path)
			return nil
		}
		return dumpLanguage(out, lc)
	},
}

func init() {
	languagesCmd.Flags().BoolVar(&languagesSave, "save", false, "write the language into the config file")
	rootCmd.AddCommand(languagesCmd)
}

func listLanguages(w io.Writer, reg *language.Registry) error {
	for _, name := range reg.Languages() {
		exts := reg.Extensions(name)
		if _, err := fmt.Fprintf(w, "%-16s %s\n", name, strings.Join(exts, " ")); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

func dumpLanguage(w io.Writer, lc config.LanguageConfig) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode([]config.LanguageConfig{lc}); err != nil {
		return fmt.Errorf("encoding language: %w", err)
	}
	_ = encoder.Close()

	log.Debug(log.CatCLI, "Dumped language", "language", lc.Name, "bytes", buf.Len())
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjrosen/hilite/internal/document"
	"github.com/zjrosen/hilite/internal/log"
	"github.com/zjrosen/hilite/internal/theme"
	"github.com/zjrosen/hilite/internal/watcher"
)

var (
	renderLanguage    string
	renderTheme       string
	renderColor       string
	renderLineNumbers bool
	renderWatch       bool
)

var renderCmd = &cobra.Command{
	Use:   "render [files...]",
	Short: "Highlight files and print them with ANSI colors",
	Long: `Highlight files and print them with ANSI colors.

The language is inferred from each file's extension unless --language (or the
language config key) forces one. With no files, stdin is read and a language
must be given.

Examples:
  hilite render main.py
  hilite render --theme monokai --line-numbers src/*.py
  cat script | hilite render --language python
  hilite render --watch main.py`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderLanguage, "language", "l", "", "language for every input (default: by file extension)")
	renderCmd.Flags().StringVarP(&renderTheme, "theme", "t", "", "theme preset (see 'hilite themes')")
	renderCmd.Flags().StringVar(&renderColor, "color", "", "color output: auto, always, never (default: render.color)")
	renderCmd.Flags().BoolVarP(&renderLineNumbers, "line-numbers", "n", false, "prefix lines with their number")
	renderCmd.Flags().BoolVarP(&renderWatch, "watch", "w", false, "re-render files when they change")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	c := cfg
	if renderLanguage != "" {
		c.Language = renderLanguage
	}
	if renderColor != "" {
		c.Render.Color = renderColor
	}
	if cmd.Flags().Changed("line-numbers") {
		c.Render.LineNumbers = renderLineNumbers
	}
	if err := applyColorMode(c.Render.Color); err != nil {
		return err
	}

	env, err := newEnvironment(c, renderTheme)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		if renderWatch {
			return fmt.Errorf("--watch needs at least one file")
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		doc, err := openDocument(env, "", string(data))
		if err != nil {
			return err
		}
		defer doc.Close()
		return writeDocument(out, doc, env.theme, c.Render.LineNumbers)
	}

	docs := make(map[string]*document.Document, len(args))
	defer func() {
		for _, doc := range docs {
			doc.Close()
		}
	}()
	for i, path := range args {
		data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from the command line
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		doc, err := openDocument(env, path, string(data))
		if err != nil {
			return err
		}
		docs[path] = doc

		if len(args) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(out)
			}
			_, _ = fmt.Fprintf(out, "==> %s <==\n", path)
		}
		if err := writeDocument(out, doc, env.theme, c.Render.LineNumbers); err != nil {
			return err
		}
	}

	if !renderWatch {
		return nil
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchDocuments(ctx, out, args, docs, env.theme, c.Render.LineNumbers)
}

// applyColorMode sets the lipgloss color profile for mode.
func applyColorMode(mode string) error {
	switch mode {
	case "", "auto":
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	default:
		return fmt.Errorf("invalid --color %q: want auto, always or never", mode)
	}
	return nil
}

func openDocument(env *environment, path, text string) (*document.Document, error) {
	h, err := env.highlighterFor(path)
	if err != nil {
		return nil, err
	}
	log.Debug(log.CatCLI, "Opening document", "path", path, "language", h.Language(), "bytes", len(text))
	return document.New(h, text), nil
}

// writeDocument prints every line of doc. A final empty line left by a
// trailing newline is not printed.
func writeDocument(w io.Writer, doc *document.Document, th *theme.Theme, lineNumbers bool) error {
	n := doc.Len()
	if last, _ := doc.Line(n - 1); n > 1 && last == "" {
		n--
	}

	width := len(strconv.Itoa(n))
	gutter := lipgloss.NewStyle().Faint(true)

	var sb strings.Builder
	for i := 0; i < n; i++ {
		text, _ := doc.Line(i)
		spans, _ := doc.Spans(i)
		if lineNumbers {
			sb.WriteString(gutter.Render(fmt.Sprintf("%*d ", width, i+1)))
		}
		sb.WriteString(th.Render(text, spans))
		sb.WriteByte('\n')
	}
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// watchDocuments re-renders each changed file until ctx is done.
func watchDocuments(ctx context.Context, out io.Writer, paths []string, docs map[string]*document.Document, th *theme.Theme, lineNumbers bool) error {
	w, err := watcher.New(watcher.DefaultConfig(paths...))
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	changes, err := w.Start()
	if err != nil {
		return err
	}

	abs := make(map[string]string, len(paths))
	for _, p := range paths {
		a, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", p, err)
		}
		abs[a] = p
	}

	log.Info(log.CatWatcher, "Watching files", "count", len(paths))
	for {
		select {
		case <-ctx.Done():
			return nil
		case changed := <-changes:
			for _, a := range changed {
				path, ok := abs[a]
				if !ok {
					continue
				}
				data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from the command line
				if err != nil {
					log.ErrorErr(log.CatWatcher, "Failed to reread file", err, "path", path)
					continue
				}
				doc := docs[path]
				change := doc.SetText(string(data))
				log.Debug(log.CatWatcher, "File changed", "path", path, "first", change.First, "last", change.Last)

				_, _ = fmt.Fprintf(out, "\n==> %s <==\n", path)
				if err := writeDocument(out, doc, th, lineNumbers); err != nil {
					return err
				}
			}
		}
	}
}

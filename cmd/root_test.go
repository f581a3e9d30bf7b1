package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/hilite/internal/config"
	"github.com/zjrosen/hilite/internal/document"
	"github.com/zjrosen/hilite/internal/highlight"
	"github.com/zjrosen/hilite/internal/language"
	"github.com/zjrosen/hilite/internal/theme"
)

// resetCommandState clears flag values and viper state left by a previous Execute.
func resetCommandState(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandState(sub)
	}
}

// execute runs the root command with args against the config file at cfgPath.
func execute(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()
	resetCommandState(rootCmd)
	viper.Reset()
	closeLog = func() {}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

// writeConfig writes yaml to a temp config file and returns its path.
func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const pythonSource = `class Foo:
    def _helper(self, x=0x1F):
        """doc
        more"""
        return x  # done
`

func TestRender_Stdin(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	out, err := execute(t, cfgPath, pythonSource, "render", "--language", "python")
	require.NoError(t, err)
	require.Equal(t, pythonSource, out)
}

func TestRender_CRLFInput(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	out, err := execute(t, cfgPath, "x = 1\r\n# c\r\n", "render", "--language", "python")
	require.NoError(t, err)
	require.Equal(t, "x = 1\n# c\n", out)
}

func TestRender_StdinNeedsLanguage(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	_, err := execute(t, cfgPath, "x = 1", "render")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--language")
}

func TestRender_LanguageFromConfig(t *testing.T) {
	cfgPath := writeConfig(t, "language: python\nrender:\n  color: never\n")
	out, err := execute(t, cfgPath, "x = 1", "render")
	require.NoError(t, err)
	require.Equal(t, "x = 1\n", out)
}

func TestRender_FileWithLineNumbers(t *testing.T) {
	cfgPath := writeConfig(t, "")
	src := writeSource(t, "main.py", "x = 1\ny = 2\n")

	out, err := execute(t, cfgPath, "", "render", "--color", "never", "-n", src)
	require.NoError(t, err)
	require.Equal(t, "1 x = 1\n2 y = 2\n", out)
}

func TestRender_AlwaysColor(t *testing.T) {
	cfgPath := writeConfig(t, "")
	src := writeSource(t, "main.py", pythonSource)

	out, err := execute(t, cfgPath, "", "render", "--color", "always", src)
	require.NoError(t, err)
	require.Contains(t, out, "\x1b[")
	require.Equal(t, pythonSource, ansi.Strip(out))
}

func TestRender_MultipleFiles(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	a := writeSource(t, "a.py", "a = 1\n")
	b := writeSource(t, "b.py", "b = 2\n")

	out, err := execute(t, cfgPath, "", "render", a, b)
	require.NoError(t, err)
	require.Equal(t, "==> "+a+" <==\na = 1\n\n==> "+b+" <==\nb = 2\n", out)
}

func TestRender_UnknownExtension(t *testing.T) {
	cfgPath := writeConfig(t, "")
	src := writeSource(t, "notes.txt", "hello")

	_, err := execute(t, cfgPath, "", "render", "--color", "never", src)
	require.ErrorIs(t, err, language.ErrUnknownLanguage)
}

func TestRender_ConfigLanguage(t *testing.T) {
	cfgPath := writeConfig(t, `render:
  color: never
languages:
  - name: mini
    extensions: [".mini"]
    keywords: [let]
`)
	src := writeSource(t, "a.mini", "let x\n")
	out, err := execute(t, cfgPath, "", "render", src)
	require.NoError(t, err)
	require.Equal(t, "let x\n", out)
}

func TestRender_InvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: sometimes\n")
	_, err := execute(t, cfgPath, "", "render", "--language", "python")
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid configuration")
}

func TestRender_UnknownTheme(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	_, err := execute(t, cfgPath, "x", "render", "--language", "python", "--theme", "no-such-theme")
	require.ErrorIs(t, err, theme.ErrUnknownPreset)
}

func TestRender_WatchNeedsFiles(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	_, err := execute(t, cfgPath, "x", "render", "--language", "python", "--watch")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--watch")
}

func TestLanguages_List(t *testing.T) {
	cfgPath := writeConfig(t, "languages:\n  - name: mini\n    extensions: ['.mini']\n")
	out, err := execute(t, cfgPath, "", "languages")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, []string{"mini", ".mini"}, strings.Fields(lines[0]))
	require.Equal(t, []string{"python", ".py", ".pyi", ".pyw"}, strings.Fields(lines[1]))
}

func TestLanguages_Dump(t *testing.T) {
	cfgPath := writeConfig(t, "")
	out, err := execute(t, cfgPath, "", "languages", "python")
	require.NoError(t, err)

	var dumped []config.LanguageConfig
	require.NoError(t, yaml.Unmarshal([]byte(out), &dumped))
	require.Equal(t, []config.LanguageConfig{language.ToConfig(highlight.Python())}, dumped)
}

func TestLanguages_Unknown(t *testing.T) {
	cfgPath := writeConfig(t, "")
	_, err := execute(t, cfgPath, "", "languages", "cobol")
	require.ErrorIs(t, err, language.ErrUnknownLanguage)
}

func TestLanguages_Save(t *testing.T) {
	cfgPath := writeConfig(t, "# keep me\nrender:\n  line_numbers: true\n")
	out, err := execute(t, cfgPath, "", "languages", "python", "--save")
	require.NoError(t, err)
	require.Contains(t, out, "Saved python to "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "# keep me")

	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)
	require.True(t, loaded.Render.LineNumbers)
	require.Len(t, loaded.Languages, 1)
	require.Equal(t, "python", loaded.Languages[0].Name)
	require.NoError(t, config.Validate(loaded))
}

func TestThemes_List(t *testing.T) {
	cfgPath := writeConfig(t, "")
	out, err := execute(t, cfgPath, "", "themes")
	require.NoError(t, err)

	names := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, theme.DefaultName, names[0])
	require.Contains(t, names, "monokai")
}

func TestThemes_Preview(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	out, err := execute(t, cfgPath, "", "themes", "default")
	require.NoError(t, err)

	var want []string
	for _, id := range highlight.Styles() {
		want = append(want, id.String())
	}
	require.Equal(t, strings.Join(want, "\n")+"\n", out)
}

func TestInit_WritesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	out, err := execute(t, cfgPath, "", "init")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote "+cfgPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, err = execute(t, cfgPath, "", "init")
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")

	_, err = execute(t, cfgPath, "", "init", "--force")
	require.NoError(t, err)
}

func TestLogFile(t *testing.T) {
	cfgPath := writeConfig(t, "render:\n  color: never\n")
	logPath := filepath.Join(t.TempDir(), "hilite.log")

	_, err := execute(t, cfgPath, "x = 1", "render", "--language", "python", "--log-file", logPath, "--log-level", "debug")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "[cli] Command starting")
	require.Contains(t, string(data), "[document]")
}

func TestNewEnvironment_Flags(t *testing.T) {
	c := config.Defaults()
	c.Flags["isolate-closed-regions"] = true

	env, err := newEnvironment(c, "")
	require.NoError(t, err)
	h, err := env.highlighterFor("a.py")
	require.NoError(t, err)
	require.True(t, h.RuleSet().IsolatesRegions())

	env, err = newEnvironment(config.Defaults(), "")
	require.NoError(t, err)
	h, err = env.highlighterFor("a.py")
	require.NoError(t, err)
	require.False(t, h.RuleSet().IsolatesRegions())
}

func TestWriteDocument_TrailingNewline(t *testing.T) {
	h, err := highlight.FromDefinition(highlight.Definition{Name: "plain"})
	require.NoError(t, err)
	th := theme.Default()

	for _, tc := range []struct{ in, want string }{
		{in: "", want: "\n"},
		{in: "a", want: "a\n"},
		{in: "a\n", want: "a\n"},
		{in: "a\n\n", want: "a\n\n"},
	} {
		var buf bytes.Buffer
		require.NoError(t, writeDocument(&buf, document.New(h, tc.in), th, false))
		require.Equal(t, tc.want, buf.String(), "input %q", tc.in)
	}
}

func TestSetVersion(t *testing.T) {
	old := rootCmd.Version
	defer SetVersion(old)

	SetVersion("1.2.3")
	require.Equal(t, "1.2.3", rootCmd.Version)
}

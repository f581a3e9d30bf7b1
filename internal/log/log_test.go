package log

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_DisabledByDefault(t *testing.T) {
	Reset()
	require.NotPanics(t, func() {
		Debug(CatHighlight, "nobody listens", "rules", 3)
	})
	require.Nil(t, Subscribe(context.Background()))
}

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatDocument, "rehighlighted", "first", 2, "last", 7)
	Warn(CatConfig, "odd fields", "orphan")

	out := buf.String()
	require.Contains(t, out, "[INFO] [document] rehighlighted first=2 last=7")
	require.Contains(t, out, "[WARN] [config] odd fields orphan=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatHighlight, "hidden")
	ErrorErr(CatLanguage, "compile failed", os.ErrNotExist)

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "error=file does not exist")
}

func TestLog_SetEnabled(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetEnabled(false)
	Error(CatCLI, "muted")
	require.Empty(t, buf.String())
}

func TestLog_InitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hilite.log")
	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatWatcher, "started", "path", "a.py")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [watcher] started path=a.py")
}

func TestLog_Subscribe(t *testing.T) {
	InitWriter(nil)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := Subscribe(ctx)
	require.NotNil(t, ch)

	Debug(CatTheme, "preset loaded", "name", "monokai")

	select {
	case ev := <-ch:
		require.Contains(t, ev.Payload, "preset loaded name=monokai")
	case <-time.After(200 * time.Millisecond):
		require.Fail(t, "timeout waiting for log event")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, lvl)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}

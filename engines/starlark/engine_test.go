package starlark

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robbyt/go-scripthost/host"
	"github.com/robbyt/go-scripthost/loader"
)

// writeScript drops script source into a temp dir and returns its path.
func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.star")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func newTestClient(props *host.Registry) (host.Client, *recordingHandler) {
	rec := &recordingHandler{}
	return host.NewClient("test-script", props, host.WithLogHandler(rec)), rec
}

func TestLoadSuccess(t *testing.T) {
	t.Parallel()

	props := host.NewRegistry()
	props.RegisterStatic("volume", host.Double(50))
	props.RegisterStatic("pause", host.Bool(false))
	client, rec := newTestClient(props)

	path := writeScript(t, `
names = mp.property_list()
mp.log("saw " + str(len(names)) + " properties")
v = mp.get_property("volume")
mp.log("volume is " + str(v))
`)

	e := New()
	require.NoError(t, e.Load(context.Background(), client, path))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "saw 2 properties", msgs[0])
	assert.Equal(t, "volume is 50.0", msgs[1])
}

func TestLoadMissingProperty(t *testing.T) {
	t.Parallel()

	client, rec := newTestClient(host.NewRegistry())
	path := writeScript(t, `v = mp.get_property("nonexistent-property")
mp.log("got " + str(v))
`)

	e := New()
	require.NoError(t, e.Load(context.Background(), client, path))

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, `get_property("nonexistent-property") failed: property not found`, msgs[0])
	assert.Equal(t, "got None", msgs[1])
}

func TestLoadUncaughtError(t *testing.T) {
	t.Parallel()

	client, rec := newTestClient(host.NewRegistry())
	path := writeScript(t, `
def f():
    fail("boom")

f()
`)

	e := New()
	// an uncaught guest error never flips the load result
	require.NoError(t, e.Load(context.Background(), client, path))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	block := msgs[0]

	lines := strings.Split(block, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "boom")
	assert.Equal(t, "backtrace:", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "\t[0] => "), "innermost frame first, got %q", lines[2])
}

func TestLoadCompileError(t *testing.T) {
	t.Parallel()

	client, rec := newTestClient(host.NewRegistry())
	path := writeScript(t, `def broken(:
`)

	e := New()
	// compile errors are logged, not returned
	require.NoError(t, e.Load(context.Background(), client, path))

	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "backtrace:")
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	client, rec := newTestClient(host.NewRegistry())
	path := filepath.Join(t.TempDir(), "missing.star")

	e := New()
	err := e.Load(context.Background(), client, path)
	require.ErrorIs(t, err, ErrScriptOpen)
	assert.Empty(t, rec.Messages(), "nothing runs when the file cannot be opened")
}

func TestLoadPathExpansion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.star"), []byte(`mp.log("hi")`), 0o644))

	rec := &recordingHandler{}
	client := host.NewClient("test-script", host.NewRegistry(),
		host.WithLogHandler(rec), host.WithConfigDir(dir))

	e := New()
	require.NoError(t, e.Load(context.Background(), client, "~~/hello.star"))
	assert.Equal(t, []string{"hi"}, rec.Messages())
}

func TestLoadInlineSource(t *testing.T) {
	t.Parallel()

	// any Loader feeds the interpreter, not just a disk file
	client, rec := newTestClient(host.NewRegistry())
	ld, err := loader.NewFromString(`mp.log("inline")`)
	require.NoError(t, err)

	e := New()
	sc := &ScriptContext{
		Name:   client.Name(),
		Client: client,
		Logger: slog.New(client.LogHandler()),
	}
	require.NoError(t, e.load(context.Background(), sc, ld))
	assert.Equal(t, []string{"inline"}, rec.Messages())
}

func TestLoadIsolation(t *testing.T) {
	t.Parallel()

	// two loads sharing one registry each own a private interpreter
	props := host.NewRegistry()
	props.RegisterStatic("name", host.String("shared"))

	e := New()
	pathA := writeScript(t, `mp.log(mp.get_property("name") + "-a")`)
	pathB := writeScript(t, `mp.log(mp.get_property("name") + "-b")`)

	clientA, recA := newTestClient(props)
	clientB, recB := newTestClient(props)

	errCh := make(chan error, 2)
	go func() { errCh <- e.Load(context.Background(), clientA, pathA) }()
	go func() { errCh <- e.Load(context.Background(), clientB, pathB) }()
	require.NoError(t, <-errCh)
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"shared-a"}, recA.Messages())
	assert.Equal(t, []string{"shared-b"}, recB.Messages())
}

func TestFileExt(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "star", New().FileExt())
}

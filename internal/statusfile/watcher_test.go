package statusfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/harveysanders/picostatus/statusled"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startWatcher(t *testing.T, path string) (*Watcher, chan statusled.Word) {
	t.Helper()
	got := make(chan statusled.Word, 8)
	w := New(path, func(word statusled.Word) { got <- word }, newTestLogger(), WithDebounce(10*time.Millisecond))
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { assert.NoError(t, w.Stop()) })
	return w, got
}

func receive(t *testing.T, ch <-chan statusled.Word) statusled.Word {
	t.Helper()
	select {
	case w := <-ch:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no status applied")
		return 0
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(path, []byte("red|solid\n"), 0o644))

	w, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, statusled.WordRed|statusled.WordSolid, w)

	require.NoError(t, os.WriteFile(path, []byte("mauve"), 0o644))
	_, err = Read(path)
	assert.ErrorIs(t, err, statusled.ErrSyntax)
}

func TestWatcherAppliesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(path, []byte("0x6002"), 0o644))

	_, got := startWatcher(t, path)
	assert.Equal(t, statusled.WordTeal|statusled.WordSolid, receive(t, got))
}

func TestWatcherFollowsWritesAndRenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status")
	_, got := startWatcher(t, path)

	require.NoError(t, os.WriteFile(path, []byte("magenta|longblink"), 0o644))
	assert.Equal(t, statusled.WordMagenta|statusled.WordLongBlink, receive(t, got))

	tmp := filepath.Join(dir, "status.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("green solid"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	assert.Equal(t, statusled.WordGreen|statusled.WordSolid, receive(t, got))
}

func TestWatcherSkipsUnchangedAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status")
	require.NoError(t, os.WriteFile(path, []byte("blue|off"), 0o644))
	_, got := startWatcher(t, path)
	assert.Equal(t, statusled.WordBlue|statusled.WordOff, receive(t, got))

	require.NoError(t, os.WriteFile(path, []byte("blue|off"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("not a status"), 0o644))
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("orange|shortblink"), 0o644))
	assert.Equal(t, statusled.WordOrange, receive(t, got))
	assert.Empty(t, got)
}

func TestStopBeforeStart(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "status"), func(statusled.Word) {}, newTestLogger())
	assert.NoError(t, w.Stop())
}

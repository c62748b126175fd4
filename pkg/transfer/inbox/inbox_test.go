package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetracker-store/pkg/transfer"
)

type fakeImporter struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeImporter) Import(ctx context.Context, raw []byte) (*transfer.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(raw))
	if string(raw) == "broken" {
		return nil, errors.New("broken")
	}
	return &transfer.ImportResult{RaceID: len(f.calls)}, nil
}

func (f *fakeImporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type results struct {
	mu    sync.Mutex
	files map[string]error
}

func (r *results) add(path string, _ *transfer.ImportResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[filepath.Base(path)] = err
}

func (r *results) has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[name]
	return ok
}

func (r *results) get(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.files[name]
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "early.json"), []byte("early"), 0o600))

	imp := &fakeImporter{}
	res := &results{files: map[string]error{}}
	w := New(dir, imp,
		WithSettleTime(20*time.Millisecond),
		WithExisting(true),
		WithNotify(res.add))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return res.has("early.json") },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "race.json"), []byte("race"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("broken"), 0o600))

	require.Eventually(t, func() bool { return res.has("race.json") && res.has("bad.json") },
		2*time.Second, 10*time.Millisecond)
	assert.False(t, res.has("notes.txt"))
	assert.Error(t, res.get("bad.json"))

	// a file is only imported once
	require.NoError(t, os.WriteFile(filepath.Join(dir, "race.json"), []byte("race2"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, imp.count())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), &fakeImporter{})
	assert.Error(t, w.Run(context.Background()))
}

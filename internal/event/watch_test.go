package event_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xtding233/wotsim/internal/event"
)

func TestFileWatcher_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "a.yaml")
	later := filepath.Join(dir, "b.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("x: 1"), 0o644))

	changed := make(chan string, 8)
	w := event.NewFileWatcher([]string{existing, later}, 10*time.Millisecond, func(p string) { changed <- p })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// let the priming scan run before touching anything
	time.Sleep(30 * time.Millisecond)
	select {
	case p := <-changed:
		t.Fatalf("unexpected change before edit: %s", p)
	default:
	}

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(existing, future, future))
	waitFor(t, changed, existing)

	require.NoError(t, os.WriteFile(later, []byte("y: 2"), 0o644))
	waitFor(t, changed, later)
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change on %s", want)
		}
	}
}

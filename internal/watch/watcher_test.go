package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JNZader/declint/internal/logger"
)

func quietLogger() *logger.Logger {
	return logger.New(logger.LevelError, &bytes.Buffer{})
}

func start(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)

	return func() {
		stop()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run did not return after cancel")
		}
	}
}

func TestWatcherDebounce(t *testing.T) {
	dir := t.TempDir()

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Roots:      []string{dir},
		Extensions: []string{".h"},
		Debounce:   100 * time.Millisecond,
		Logger:     quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cancel := start(t, w)

	for _, name := range []string{"A.h", "B.h", "C.h"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("@interface A\n@end\n"), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	cancel()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, name := range []string{"A.h", "B.h", "C.h"} {
		if !slices.Contains(collected, filepath.Join(w.Roots()[0], name)) {
			t.Errorf("expected %s in changed files, got %v", name, collected)
		}
	}
}

func TestWatcherFiltersExtensionsAndIgnores(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Pods", "Vendor"), 0o755); err != nil {
		t.Fatal(err)
	}

	fired := make(chan []string, 10)
	w, err := New(Config{
		Roots:      []string{dir},
		Extensions: []string{".h", ".decl.yaml"},
		Ignore:     []string{"Pods/*"},
		Debounce:   50 * time.Millisecond,
		Logger:     quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cancel := start(t, w)
	defer cancel()

	// Neither of these may trigger a re-check.
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("# notes"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Pods", "Vendor", "Vendor.h"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "Order.decl.yaml"), []byte("interfaces: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		want := filepath.Join(w.Roots()[0], "Order.decl.yaml")
		if !slices.Equal(changed, []string{want}) {
			t.Errorf("changed = %v, want [%s]", changed, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
}

func TestWatcherNewDirectory(t *testing.T) {
	dir := t.TempDir()

	fired := make(chan []string, 10)
	w, err := New(Config{
		Roots:      []string{dir},
		Extensions: []string{".h"},
		Debounce:   50 * time.Millisecond,
		Logger:     quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cancel := start(t, w)
	defer cancel()

	sub := filepath.Join(dir, "Sources")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "New.h"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-fired:
		if !slices.Contains(changed, filepath.Join(w.Roots()[0], "Sources", "New.h")) {
			t.Errorf("changed = %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback in new directory")
	}
}

func TestWatcherRunTwice(t *testing.T) {
	w, err := New(Config{Roots: []string{t.TempDir()}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	cancel := start(t, w)
	defer cancel()

	if err := w.Run(context.Background()); err == nil {
		t.Error("expected an error from a second Run")
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{Roots: []string{filepath.Join(t.TempDir(), "absent")}}); err == nil {
		t.Error("expected error for a missing root")
	}
	if _, err := New(Config{Roots: []string{t.TempDir()}, Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for an invalid ignore pattern")
	}
}

func TestNew_FileRootWatchesItsDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "A.h")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Roots: []string{file, dir}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.fsw.Close()

	if roots := w.Roots(); len(roots) != 1 {
		t.Errorf("Roots() = %v, want a single directory", roots)
	}
}

func TestDefaultIgnores(t *testing.T) {
	w := &Watcher{ignores: DefaultIgnores()}

	tests := []struct {
		rel  string
		want bool
	}{
		{".git/objects/ab", true},
		{"Sources/.CGExample.h.swp", true},
		{"App.xcodeproj/xcuserdata/me.xcuserdatad", true},
		{"Sources/CGExample.h", false},
	}
	for _, tt := range tests {
		if got := w.isIgnored(tt.rel); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

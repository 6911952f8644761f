package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherNotifiesOnChange(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	changed := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(path string) {
			select {
			case changed <- path:
			default:
			}
		})
	}()
	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(root, "index.html")
	if err := os.WriteFile(target, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-changed:
		if path != target {
			t.Errorf("changed path = %q, want %q", path, target)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification received")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, 150*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	var notifications atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(string) {
			notifications.Add(1)
		})
	}()
	time.Sleep(100 * time.Millisecond)

	// A rapid burst of writes should collapse to one notification.
	target := filepath.Join(root, "app.css")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte("body{}"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)

	if n := notifications.Load(); n != 1 {
		t.Errorf("notifications = %d, want 1", n)
	}

	_ = w.Stop()
}

func TestWatcherSeesFilesInNewDirectories(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	changed := make(chan string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = w.Watch(ctx, func(path string) {
			select {
			case changed <- path:
			default:
			}
		})
	}()
	time.Sleep(100 * time.Millisecond)

	// A directory created after Watch started must itself be watched.
	sub := filepath.Join(root, "blocks")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "hero.css")
	if err := os.WriteFile(target, []byte(".hero{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case path := <-changed:
			if path == target {
				_ = w.Stop()
				return
			}
		case <-deadline:
			t.Fatal("no notification for file in new subdirectory")
		}
	}
}

func TestStopWithoutWatch(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- w.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() blocked with no Watch running")
	}
}

func TestStopTwice(t *testing.T) {
	root := t.TempDir()

	w, err := NewWatcher(root, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx, func(string) {}) }()
	time.Sleep(100 * time.Millisecond)

	if err := w.Stop(); err != nil {
		t.Errorf("first Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestIsDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "index.html")
	if err := os.WriteFile(file, []byte("<html></html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got, err := isDirectory(root); err != nil || !got {
		t.Errorf("isDirectory(dir) = %v, %v, want true, nil", got, err)
	}
	if got, err := isDirectory(file); err != nil || got {
		t.Errorf("isDirectory(file) = %v, %v, want false, nil", got, err)
	}
	if _, err := isDirectory(filepath.Join(root, "missing")); err == nil {
		t.Error("isDirectory(missing) error = nil, want error")
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"index.html", false},
		{"styles/app.css", false},
		{".git/HEAD", true},
		{"site/.stagehand/access.db", true},
		{".", false},
		{"./site/index.html", false},
	}
	for _, tt := range tests {
		if got := isHidden(tt.path); got != tt.want {
			t.Errorf("isHidden(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var fired atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { fired.Add(1) })
	}

	time.Sleep(200 * time.Millisecond)

	if n := fired.Load(); n != 1 {
		t.Errorf("callback fired %d times, want 1", n)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(250 * time.Millisecond)

	if n := fired.Load(); n != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", n)
	}
}

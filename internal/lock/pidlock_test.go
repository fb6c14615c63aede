package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireWritesPID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blockgate.pid")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = l.Release() })

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := fmt.Sprintf("%d", os.Getpid())
	if strings.TrimSpace(string(b)) != want {
		t.Fatalf("expected pid %s in lock file, got %q", want, string(b))
	}
}

func TestAcquireRejectsSecondHolder(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blockgate.pid")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	t.Cleanup(func() { _ = l.Release() })

	if _, err := Acquire(path); err == nil {
		t.Fatalf("expected second Acquire to fail while lock is held")
	}
}

func TestAcquireAfterRelease(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "blockgate.pid")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	l2, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	_ = l2.Release()
}

func TestAcquireEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Acquire(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestReleaseNil(t *testing.T) {
	t.Parallel()

	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("Release on nil: %v", err)
	}
}

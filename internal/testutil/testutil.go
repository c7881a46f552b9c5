// Package testutil provides shared test helpers for setting up notes
// directories and the in-process privileged side.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/jotter/internal/boundary"
	"github.com/starford/jotter/internal/clientstate"
	"github.com/starford/jotter/internal/notify"
	"github.com/starford/jotter/internal/picker"
	"github.com/starford/jotter/internal/storage"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// NotesDir creates a temporary notes directory holding files.
func NotesDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// ReadNote returns the content of name in dir, failing the test when it is
// missing.
func ReadNote(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}

// StateDB opens a temporary client state database that is closed on cleanup.
func StateDB(t *testing.T) *clientstate.DB {
	t.Helper()
	db, err := clientstate.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Local creates a Local bridge whose picker always chooses dir. The bridge
// and its broker are closed on cleanup.
func Local(t *testing.T, dir string, opts ...boundary.Option) (*boundary.Local, *notify.Broker) {
	t.Helper()
	broker := notify.NewBroker(0)
	opts = append([]boundary.Option{
		boundary.WithPicker(picker.Static(dir)),
		boundary.WithLogger(Logger()),
	}, opts...)
	local := boundary.NewLocal(storage.NewFS(), broker, opts...)
	t.Cleanup(func() {
		local.Close()
		broker.Close()
	})
	return local, broker
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Fatal(msg)
}

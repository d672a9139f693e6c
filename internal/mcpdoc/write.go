package mcpdoc

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
)

// pendingTemps tracks temp files that have been written but not yet
// renamed, so an interrupt never strands a half-written file.
var (
	pendingMu    sync.Mutex
	pendingTemps = map[string]struct{}{}
)

func registerTemp(path string) {
	pendingMu.Lock()
	pendingTemps[path] = struct{}{}
	pendingMu.Unlock()
}

func unregisterTemp(path string) {
	pendingMu.Lock()
	delete(pendingTemps, path)
	pendingMu.Unlock()
}

func removePendingTemps() {
	pendingMu.Lock()
	defer pendingMu.Unlock()
	for path := range pendingTemps {
		_ = os.Remove(path)
		delete(pendingTemps, path)
	}
}

// InstallCleanup removes any not-yet-renamed temp file when the process
// is interrupted. The prior configuration and its backup stay intact.
// Call once from main.
func InstallCleanup() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		removePendingTemps()
		os.Exit(130)
	}()
}

// WriteAtomic materializes data at path: a fresh temp file in the same
// directory, owner-only permissions, fsync, then an atomic rename. The
// live file at path is never written in place, so a crash mid-write
// cannot truncate it.
func WriteAtomic(path string, data []byte, runID string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mcp-"+runID+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	registerTemp(tmpName)

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		unregisterTemp(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		unregisterTemp(tmpName)
		return fmt.Errorf("rename %s to %s: %w", tmpName, path, err)
	}
	unregisterTemp(tmpName)
	return nil
}

// Package reset implements the --reinstall mode: clear accumulated
// history and log state, sweep stale temp files, and reinstall the
// assistant host.
package reset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vsavkov/mcpsetup/internal/probe"
	"github.com/vsavkov/mcpsetup/internal/termlog"
)

// HistoryDir and LogFileName live under the base directory.
const (
	HistoryDir  = "history"
	LogFileName = "lspLog.log"
)

// staleTempPattern matches temp files an interrupted run may have left.
const staleTempPattern = ".mcp-*.json.tmp*"

// ClearState removes everything under history/ (recreating it empty),
// removes the log file without recreating it, and sweeps stale temp
// files from interrupted runs.
func ClearState(baseDir string, log *termlog.Logger) error {
	history := filepath.Join(baseDir, HistoryDir)
	entries, err := doublestar.FilepathGlob(filepath.Join(history, "**"))
	if err != nil {
		return fmt.Errorf("glob history: %w", err)
	}
	if err := os.RemoveAll(history); err != nil {
		return fmt.Errorf("clear %s: %w", history, err)
	}
	if err := os.MkdirAll(history, 0o700); err != nil {
		return fmt.Errorf("recreate %s: %w", history, err)
	}
	log.Success("cleared %d entr(ies) from %s", len(entries), history)

	logPath := filepath.Join(baseDir, LogFileName)
	if err := os.Remove(logPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", logPath, err)
		}
	} else {
		log.Success("removed %s", logPath)
	}

	stale, err := doublestar.FilepathGlob(filepath.Join(baseDir, staleTempPattern))
	if err != nil {
		return fmt.Errorf("glob stale temps: %w", err)
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			log.Warn("could not remove stale temp %s: %v", path, err)
			continue
		}
		log.Detail("removed stale temp %s", path)
	}
	return nil
}

// ReinstallHost makes one attempt to reinstall the assistant host CLI
// through the platform package manager. Best-effort: failure is
// reported via the returned record, not an error.
func ReinstallHost(ctx context.Context, p *probe.Prober) probe.Record {
	return p.Probe(ctx, probe.Tool{
		Name:    "q",
		Check:   []string{"q", "--version"},
		Install: hostInstallCommand(),
		Version: []string{"q", "--version"},
	})
}

func hostInstallCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"brew", "install", "--cask", "amazon-q"}
	case "linux":
		return []string{"npm", "install", "-g", "@aws/amazon-q-developer-cli"}
	default:
		return nil
	}
}

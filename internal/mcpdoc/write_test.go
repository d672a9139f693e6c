package mcpdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteAtomicCreatesFileWithOwnerOnlyMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	if err := WriteAtomic(path, []byte("{}\n"), "01TESTRUN"); err != nil {
		t.Fatalf("write: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("mode: got %v", fi.Mode().Perm())
	}
	b, _ := os.ReadFile(path)
	if string(b) != "{}\n" {
		t.Fatalf("content: got %q", b)
	}
}

func TestWriteAtomicReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := WriteAtomic(path, []byte("new"), "01TESTRUN"); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "new" {
		t.Fatalf("content: got %q", b)
	}
}

func TestWriteAtomicLeavesNoTempBehind(t *testing.T) {
	dir := t.TempDir()
	if err := WriteAtomic(filepath.Join(dir, "mcp.json"), []byte("{}"), "01TESTRUN"); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

// Interruption after the temp file is written but before rename must
// leave the live file byte-identical and the temp removable via the
// registered cleanup.
func TestInterruptedWriteLeavesOriginalIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	prior := []byte(`{"mcpServers":{}}` + "\n")
	if err := os.WriteFile(path, prior, 0o600); err != nil {
		t.Fatal(err)
	}

	// Simulate the moment between write and rename.
	tmp, err := os.CreateTemp(dir, ".mcp-01TESTRUN-*.json.tmp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.Write([]byte("half-written")); err != nil {
		t.Fatal(err)
	}
	tmp.Close()
	registerTemp(tmp.Name())

	removePendingTemps()

	if _, err := os.Stat(tmp.Name()); !os.IsNotExist(err) {
		t.Fatalf("temp not cleaned up: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(prior) {
		t.Fatalf("original mutated: %q", got)
	}
}

func TestWriteAtomicMissingDirectoryFails(t *testing.T) {
	err := WriteAtomic(filepath.Join(t.TempDir(), "nope", "mcp.json"), []byte("{}"), "01TESTRUN")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestBackupCopiesContentExactly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcp.json")
	content := []byte(`{"mcpServers":{"custom.widget":{"command":"x","args":[]}}}` + "\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)
	dst, err := Backup(path, now)
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if filepath.Base(dst) != "mcp-backup-2026-08-25-14:30:05.json" {
		t.Fatalf("backup name: got %s", filepath.Base(dst))
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("backup differs from original")
	}
	orig, _ := os.ReadFile(path)
	if string(orig) != string(content) {
		t.Fatalf("original mutated by backup")
	}
}

func TestBackupMissingSourceIsError(t *testing.T) {
	if _, err := Backup(filepath.Join(t.TempDir(), "mcp.json"), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}

func TestValidateSchema(t *testing.T) {
	valid := []byte(`{"mcpServers":{"git":{"command":"uvx","args":["mcp-server-git"],"timeout":60}}}`)
	if err := ValidateSchema(valid); err != nil {
		t.Fatalf("valid doc rejected: %v", err)
	}
	cases := map[string]string{
		"not json":        `{`,
		"missing command": `{"mcpServers":{"git":{"args":[]}}}`,
		"empty command":   `{"mcpServers":{"git":{"command":"","args":[]}}}`,
		"bad timeout":     `{"mcpServers":{"git":{"command":"x","args":[],"timeout":0}}}`,
		"bad args":        `{"mcpServers":{"git":{"command":"x","args":[1]}}}`,
		"no servers key":  `{}`,
	}
	for label, doc := range cases {
		if err := ValidateSchema([]byte(doc)); err == nil {
			t.Fatalf("%s: expected schema failure", label)
		}
	}
}

package reconcile

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vsavkov/mcpsetup/internal/mcpdoc"
	"github.com/vsavkov/mcpsetup/internal/prompt"
	"github.com/vsavkov/mcpsetup/internal/serverspec"
	"github.com/vsavkov/mcpsetup/internal/termlog"
)

func testLogger() *termlog.Logger {
	return termlog.New(io.Discard, true, false, false, "test")
}

func testEngine(answer bool) *Engine {
	return New(mcpdoc.NewScanCodec(), prompt.Fixed(answer), testLogger())
}

func builtinSet() map[string]serverspec.ServerDef {
	return map[string]serverspec.ServerDef{
		"git":  {Command: "uvx", Args: []string{"mcp-server-git"}},
		"time": {Command: "uvx", Args: []string{"mcp-server-time"}},
	}
}

func writePrior(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "mcp.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const priorWithExtra = `{
	"mcpServers": {
		"git": {
			"command": "uvx",
			"args": ["mcp-server-git"]
		},
		"custom.widget": {
			"command": "node",
			"args": ["widget.js"],
			"env": {
				"WIDGET_MODE": "fast"
			}
		}
	}
}
`

func TestNoPriorConfig(t *testing.T) {
	dir := t.TempDir()
	res, err := testEngine(true).Run(filepath.Join(dir, "mcp.json"), builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.BackupPath != "" {
		t.Fatalf("no backup expected, got %q", res.BackupPath)
	}
	want := []string{"git", "time"}
	if got := res.Doc.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names: got %v want %v", got, want)
	}
}

// Running twice with no prior file and identical inputs produces
// byte-identical provider documents.
func TestIdempotence(t *testing.T) {
	a, err := testEngine(true).Run(filepath.Join(t.TempDir(), "mcp.json"), builtinSet(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	b, err := testEngine(true).Run(filepath.Join(t.TempDir(), "mcp.json"), builtinSet(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Doc.Render()) != string(b.Doc.Render()) {
		t.Fatal("documents differ across identical runs")
	}
}

func TestPreservationAffirmative(t *testing.T) {
	dir := t.TempDir()
	path := writePrior(t, dir, priorWithExtra)
	res, err := testEngine(true).Run(path, builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(res.Extras, []string{"custom.widget"}) {
		t.Fatalf("extras: got %v", res.Extras)
	}
	if !res.ExtrasIncluded {
		t.Fatal("extras should be included")
	}
	var doc struct {
		MCPServers map[string]serverspec.ServerDef `json:"mcpServers"`
	}
	if err := json.Unmarshal(res.Doc.Render(), &doc); err != nil {
		t.Fatalf("merged doc invalid: %v", err)
	}
	def, ok := doc.MCPServers["custom.widget"]
	if !ok {
		t.Fatal("custom.widget missing from merged document")
	}
	if def.Command != "node" || def.Args[0] != "widget.js" || def.Env["WIDGET_MODE"] != "fast" {
		t.Fatalf("custom.widget changed: %+v", def)
	}
}

func TestPreservationDeclined(t *testing.T) {
	dir := t.TempDir()
	path := writePrior(t, dir, priorWithExtra)
	res, err := testEngine(false).Run(path, builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ExtrasIncluded {
		t.Fatal("extras should not be included")
	}
	if res.Doc.Has("custom.widget") {
		t.Fatal("declined extra present in merged document")
	}
}

// A prior "duckduckgo" entry is covered by a builtin equivalent and is
// never flagged as an extra.
func TestExceptionExclusion(t *testing.T) {
	prior := `{
	"mcpServers": {
		"duckduckgo": {"command": "uvx", "args": ["duckduckgo-mcp-server"]},
		"fetch": {"command": "uvx", "args": ["mcp-server-fetch"]}
	}
}
`
	for _, answer := range []bool{true, false} {
		dir := t.TempDir()
		path := writePrior(t, dir, prior)
		res, err := testEngine(answer).Run(path, builtinSet(), time.Now())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if len(res.Extras) != 0 {
			t.Fatalf("answer=%v: exceptions flagged as extras: %v", answer, res.Extras)
		}
		if res.Doc.Has("duckduckgo") || res.Doc.Has("fetch") {
			t.Fatalf("answer=%v: exception names merged", answer)
		}
	}
}

func TestBackupBeforeOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := writePrior(t, dir, priorWithExtra)
	res, err := testEngine(true).Run(path, builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.BackupPath == "" {
		t.Fatal("backup missing")
	}
	entries, _ := os.ReadDir(dir)
	var backups []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "mcp-backup-") {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) != 1 {
		t.Fatalf("expected exactly one backup, got %v", backups)
	}
	got, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != priorWithExtra {
		t.Fatal("backup content differs from prior file")
	}
}

func TestBackupFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	// A directory at the config path makes the backup read fail.
	path := filepath.Join(dir, "mcp.json")
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}
	if _, err := testEngine(true).Run(path, builtinSet(), time.Now()); err == nil {
		t.Fatal("expected fatal error when backup is impossible")
	}
}

func TestIllFormedPriorKeepsBuiltinsWithWarning(t *testing.T) {
	dir := t.TempDir()
	path := writePrior(t, dir, `{"mcpServers": {"a": {`)
	res, err := testEngine(true).Run(path, builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("ill-formed prior should not abort after backup: %v", err)
	}
	if res.BackupPath == "" {
		t.Fatal("backup must still be taken")
	}
	want := []string{"git", "time"}
	if got := res.Doc.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names: got %v want %v", got, want)
	}
}

// unextractableCodec reports a name it then cannot extract.
type unextractableCodec struct {
	inner mcpdoc.Codec
}

func (c unextractableCodec) Names(path string) ([]string, error) {
	names, err := c.inner.Names(path)
	return append(names, "ghost.provider"), err
}

func (c unextractableCodec) Extract(path, name string) (json.RawMessage, error) {
	if name == "ghost.provider" {
		return nil, mcpdoc.ErrNotFound
	}
	return c.inner.Extract(path, name)
}

func (c unextractableCodec) Check(data []byte) error { return c.inner.Check(data) }

func TestUnextractableExtraSkippedNonFatally(t *testing.T) {
	dir := t.TempDir()
	path := writePrior(t, dir, priorWithExtra)
	e := New(unextractableCodec{inner: mcpdoc.NewScanCodec()}, prompt.Fixed(true), testLogger())
	res, err := e.Run(path, builtinSet(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !reflect.DeepEqual(res.Skipped, []string{"ghost.provider"}) {
		t.Fatalf("skipped: got %v", res.Skipped)
	}
	if !res.Doc.Has("custom.widget") {
		t.Fatal("extractable extra lost alongside the skipped one")
	}
	if res.Doc.Has("ghost.provider") {
		t.Fatal("unextractable extra merged")
	}
}

func TestDuplicatePriorNamesDeduplicated(t *testing.T) {
	got := extras([]string{"b", "a", "b", "", "git"}, builtinSet())
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("extras: got %v", got)
	}
}

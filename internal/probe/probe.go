// Package probe detects required external tools and, when a tool is
// absent, makes one best-effort install attempt via a package manager.
package probe

import (
	"context"
	"runtime"
	"strings"

	"github.com/vsavkov/mcpsetup/internal/execx"
	"github.com/vsavkov/mcpsetup/internal/termlog"
)

// Tool describes how to detect and install one external dependency.
// Every command is a fixed argv vector, never a shell string.
type Tool struct {
	Name string

	// Check is run to confirm the tool works; exit 0 means present.
	// Empty means LookPath alone decides.
	Check []string

	// Install is the package-manager invocation attempted once when the
	// tool is absent. Empty means no install path exists.
	Install []string

	// Version is run to capture the version string.
	Version []string

	// Mandatory marks the single dependency whose absence aborts the run.
	Mandatory bool
}

// Record is the outcome of probing one tool. Ephemeral, never persisted.
type Record struct {
	Name             string
	Present          bool
	Version          string
	InstallAttempted bool
}

// Prober runs capability checks through an execx.Runner.
type Prober struct {
	run execx.Runner
	log *termlog.Logger
}

func New(run execx.Runner, log *termlog.Logger) *Prober {
	return &Prober{run: run, log: log}
}

// Probe checks for the tool, attempts one install if it is absent, and
// re-checks. Install failure is reported through the record, not an
// error; the caller decides whether absence is fatal.
func (p *Prober) Probe(ctx context.Context, t Tool) Record {
	rec := Record{Name: t.Name, Version: "unknown"}
	if p.present(ctx, t) {
		rec.Present = true
		rec.Version = p.version(ctx, t)
		return rec
	}

	if len(t.Install) > 0 {
		rec.InstallAttempted = true
		p.log.Info("%s not found, attempting install", t.Name)
		res, err := p.run.Run(ctx, t.Install[0], t.Install[1:]...)
		if err != nil {
			p.log.Warn("%s install could not start: %v", t.Name, err)
		} else if res.ExitCode != 0 {
			p.log.Warn("%s install exited %d", t.Name, res.ExitCode)
		}
	}

	if p.present(ctx, t) {
		rec.Present = true
		rec.Version = p.version(ctx, t)
	}
	return rec
}

func (p *Prober) present(ctx context.Context, t Tool) bool {
	if _, ok := p.run.LookPath(t.Name); !ok {
		return false
	}
	if len(t.Check) == 0 {
		return true
	}
	res, err := p.run.Run(ctx, t.Check[0], t.Check[1:]...)
	return err == nil && res.ExitCode == 0
}

func (p *Prober) version(ctx context.Context, t Tool) string {
	if len(t.Version) == 0 {
		return "unknown"
	}
	res, err := p.run.Run(ctx, t.Version[0], t.Version[1:]...)
	if err != nil || res.ExitCode != 0 {
		return "unknown"
	}
	line := strings.TrimSpace(res.Stdout)
	if line == "" {
		line = strings.TrimSpace(res.Stderr)
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if line == "" {
		return "unknown"
	}
	return line
}

// CloudAccountConfigured reports whether the host's cloud identity is
// usable. Advisory only; callers downgrade a false result to a warning.
func (p *Prober) CloudAccountConfigured(ctx context.Context) bool {
	res, err := p.run.Run(ctx, "aws", "sts", "get-caller-identity", "--output", "json")
	return err == nil && res.ExitCode == 0
}

// Required returns the dependency set this installer probes, in probe
// order. uv is the one mandatory tool: every canonical provider is
// launched through uvx.
func Required() []Tool {
	return []Tool{
		{
			Name:      "uv",
			Check:     []string{"uv", "--version"},
			Install:   installCommand("uv"),
			Version:   []string{"uv", "--version"},
			Mandatory: true,
		},
		{
			Name:    "jq",
			Check:   []string{"jq", "--version"},
			Install: installCommand("jq"),
			Version: []string{"jq", "--version"},
		},
		{
			Name:    "aws",
			Check:   []string{"aws", "--version"},
			Version: []string{"aws", "--version"},
		},
		{
			Name:    "q",
			Check:   []string{"q", "--version"},
			Version: []string{"q", "--version"},
		},
	}
}

// installCommand picks the platform package-manager invocation.
func installCommand(pkg string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"brew", "install", pkg}
	case "linux":
		if pkg == "uv" {
			return []string{"pip3", "install", "--user", "uv"}
		}
		return []string{"apt-get", "install", "-y", pkg}
	default:
		return nil
	}
}

// Package reconcile merges the builtin provider set with a user's prior
// mcp.json. The prior file is always backed up before anything else
// happens; providers unknown to the builtin set are offered back to the
// user as an all-or-nothing choice.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vsavkov/mcpsetup/internal/mcpdoc"
	"github.com/vsavkov/mcpsetup/internal/prompt"
	"github.com/vsavkov/mcpsetup/internal/serverspec"
	"github.com/vsavkov/mcpsetup/internal/termlog"
)

// Engine owns the configuration document for the duration of one run.
type Engine struct {
	codec  mcpdoc.Codec
	prompt prompt.Prompter
	log    *termlog.Logger
}

func New(codec mcpdoc.Codec, p prompt.Prompter, log *termlog.Logger) *Engine {
	return &Engine{codec: codec, prompt: p, log: log}
}

// Result reports what one reconciliation did.
type Result struct {
	Doc *mcpdoc.Document

	// BackupPath is empty when no prior configuration existed.
	BackupPath string

	// Extras are the prior provider names absent from the builtin set
	// (exceptions excluded), in sorted order.
	Extras []string

	// ExtrasIncluded records the user's decision. Meaningless when
	// Extras is empty.
	ExtrasIncluded bool

	// Skipped are extras whose definition blocks could not be extracted.
	Skipped []string
}

// Run executes the state machine: NoPriorConfig or PriorConfigPresent,
// ending Merged. A backup failure aborts — the prior file is never put
// at risk unbacked-up.
func (e *Engine) Run(path string, builtin map[string]serverspec.ServerDef, now time.Time) (*Result, error) {
	res := &Result{Doc: mcpdoc.New(builtin)}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			e.log.Detail("no prior configuration at %s", path)
			return res, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	backupPath, err := mcpdoc.Backup(path, now)
	if err != nil {
		return nil, fmt.Errorf("back up prior configuration: %w", err)
	}
	res.BackupPath = backupPath
	e.log.Success("backed up prior configuration to %s", backupPath)

	// All reads go through the immutable snapshot, not the live file.
	priorNames, err := e.codec.Names(backupPath)
	if err != nil {
		e.log.Warn("could not read provider names from prior configuration: %v", err)
		e.log.Warn("keeping builtin providers only; prior file preserved at %s", backupPath)
		return res, nil
	}

	res.Extras = extras(priorNames, builtin)
	if len(res.Extras) == 0 {
		return res, nil
	}

	e.log.Info("prior configuration defines %d provider(s) not in the builtin set:", len(res.Extras))
	for _, name := range res.Extras {
		e.log.Info("  - %s", name)
	}
	include, err := e.prompt.Confirm("Keep these providers in the new configuration?", true)
	if err != nil {
		return nil, fmt.Errorf("confirm extra providers: %w", err)
	}
	res.ExtrasIncluded = include
	if !include {
		e.log.Info("extra providers dropped; definitions remain in %s", backupPath)
		return res, nil
	}

	for _, name := range res.Extras {
		raw, err := e.codec.Extract(backupPath, name)
		if err != nil {
			if errors.Is(err, mcpdoc.ErrNotFound) {
				e.log.Warn("provider %q: definition block not found in backup, skipping", name)
			} else {
				e.log.Warn("provider %q: %v, skipping", name, err)
			}
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if !res.Doc.AddExtra(name, raw) {
			// Defensive: the subtraction already removed builtin names.
			e.log.Debug("provider %q collides with a builtin entry, builtin wins", name)
			res.Skipped = append(res.Skipped, name)
		}
	}
	return res, nil
}

// extras computes priorNames minus builtin names minus the fixed
// exception set, deduplicated and sorted.
func extras(priorNames []string, builtin map[string]serverspec.ServerDef) []string {
	except := make(map[string]struct{})
	for _, name := range serverspec.MergeExceptions() {
		except[name] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range priorNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := builtin[name]; ok {
			continue
		}
		if _, ok := except[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

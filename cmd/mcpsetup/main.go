package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/vsavkov/mcpsetup/internal/cliopts"
	"github.com/vsavkov/mcpsetup/internal/execx"
	"github.com/vsavkov/mcpsetup/internal/mcpdoc"
	"github.com/vsavkov/mcpsetup/internal/probe"
	"github.com/vsavkov/mcpsetup/internal/prompt"
	"github.com/vsavkov/mcpsetup/internal/reconcile"
	"github.com/vsavkov/mcpsetup/internal/reset"
	"github.com/vsavkov/mcpsetup/internal/secret"
	"github.com/vsavkov/mcpsetup/internal/serverspec"
	"github.com/vsavkov/mcpsetup/internal/termlog"
)

// ConfigFileName is the provider configuration inside the base directory.
const ConfigFileName = "mcp.json"

func main() {
	opts, err := cliopts.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, cliopts.Usage)
		os.Exit(1)
	}
	if opts.Help {
		fmt.Print(cliopts.Usage)
		os.Exit(0)
	}

	defaultDir, err := cliopts.DefaultBaseDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	settings, err := cliopts.LoadSettings(defaultDir)
	if err != nil {
		// Advisory: a broken settings file never blocks the install.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	opts, err = cliopts.Finalize(opts, settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Exit(run(opts))
}

func run(opts cliopts.Options) int {
	runID := ulid.Make().String()
	log := termlog.New(os.Stderr, opts.NoColor, opts.Verbose, opts.Debug, runID)
	mcpdoc.InstallCleanup()

	runner := execx.New(log)
	prober := probe.New(runner, log)
	prompter := prompt.Interactive()
	ctx := context.Background()

	if err := os.MkdirAll(opts.BaseDir, 0o700); err != nil {
		log.Error("create %s: %v", opts.BaseDir, err)
		return 1
	}
	log.Detail("base directory %s", opts.BaseDir)

	jqPresent := false
	for _, tool := range probe.Required() {
		rec := prober.Probe(ctx, tool)
		if rec.Present {
			log.Detail("%s: %s", rec.Name, rec.Version)
		}
		switch {
		case tool.Mandatory && !rec.Present:
			log.Error("%s is required and could not be installed; aborting", tool.Name)
			return 1
		case tool.Name == "jq":
			jqPresent = rec.Present
			if !rec.Present {
				log.Warn("jq not found; falling back to text-scan reads of the prior configuration")
			}
		case tool.Name == "aws" && !rec.Present:
			log.Warn("aws CLI not found; skipping cloud account check")
		case tool.Name == "aws" && rec.Present:
			if !prober.CloudAccountConfigured(ctx) {
				log.Warn("cloud account not configured; providers needing credentials may not work")
			}
		case tool.Name == "q" && !rec.Present:
			log.Warn("assistant host CLI (q) not found; configuration will be written anyway")
		}
	}

	store := secret.NewStore(opts.BaseDir, prompter)
	token, err := resolveToken(store, opts.Token, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	if opts.Reinstall {
		if err := reset.ClearState(opts.BaseDir, log); err != nil {
			log.Error("reset: %v", err)
			return 1
		}
		rec := reset.ReinstallHost(ctx, prober)
		if rec.Present {
			log.Success("assistant host ready: %s", rec.Version)
		} else {
			log.Warn("assistant host reinstall did not succeed; continuing")
		}
	}

	var codec mcpdoc.Codec = mcpdoc.NewScanCodec()
	if jqPresent {
		codec = mcpdoc.NewJQCodec(runner)
	}

	configPath := filepath.Join(opts.BaseDir, ConfigFileName)
	engine := reconcile.New(codec, prompter, log)
	res, err := engine.Run(configPath, serverspec.Builtins(token), time.Now())
	if err != nil {
		log.Error("%v", err)
		return 1
	}
	if len(res.Skipped) > 0 {
		log.Warn("%d extra provider(s) could not be carried over; see %s", len(res.Skipped), res.BackupPath)
	}

	data := res.Doc.Render()
	if err := mcpdoc.WriteAtomic(configPath, data, runID); err != nil {
		log.Error("write configuration: %v", err)
		return 1
	}
	log.Success("wrote %s (%d providers)", configPath, len(res.Doc.Names()))

	// Verification, not a precondition: the configuration is already on
	// disk, so a failure here is flagged for manual review.
	if err := codec.Check(data); err != nil {
		log.Error("post-write check failed, review %s manually: %v", configPath, err)
	}
	if err := mcpdoc.ValidateSchema(data); err != nil {
		log.Error("post-write schema validation failed, review %s manually: %v", configPath, err)
	}
	return 0
}

// resolveToken persists an inline token if one was supplied, then loads
// whatever the store holds. A declined validation prompt is a normal
// negative path: the inline token is discarded and the run continues
// with the previously stored value, if any.
func resolveToken(store *secret.Store, inline string, log *termlog.Logger) (string, error) {
	if inline != "" {
		switch err := store.Save(inline); {
		case err == nil:
			log.Success("GitHub token saved")
		case errors.Is(err, secret.ErrValidationAborted):
			log.Info("token not saved; continuing without it")
		default:
			return "", fmt.Errorf("save token: %w", err)
		}
	}
	token, err := store.Load()
	if err != nil {
		log.Warn("could not read stored token: %v", err)
		return "", nil
	}
	if token != "" && !secret.ValidShape(token) {
		log.Detail("stored token does not match the known pattern family")
	}
	return token, nil
}

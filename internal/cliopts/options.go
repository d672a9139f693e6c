// Package cliopts parses command-line arguments into a single immutable
// Options value consumed read-only by every other component.
package cliopts

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options is built once from the argument list and never mutated after.
type Options struct {
	Help      bool
	Debug     bool
	Verbose   bool
	NoColor   bool
	Reinstall bool

	// Token is the inline secret supplied via -g. Empty means "not supplied";
	// the persisted store is consulted instead.
	Token string

	// BaseDir is the directory holding mcp.json and its siblings.
	BaseDir string
}

// Settings are optional defaults read from settings.yaml in the base
// directory. Flags always win over settings.
type Settings struct {
	NoColor bool   `yaml:"no_color,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
	BaseDir string `yaml:"base_dir,omitempty"`
}

// Usage is printed on -h and on argument errors.
const Usage = `usage: mcpsetup [options]

  -h, --help       print usage and exit
  -d, --debug      echo every external command and its raw output/exit code
  -g <token>       supply the GitHub token inline (validated, then persisted)
  -r, --reinstall  clear history/log state and reinstall the assistant host
  -v, --verbose    expanded progress/failure detail
      --no-color   disable ANSI color codes in all output
`

// Parse builds Options from raw arguments (without the program name).
func Parse(args []string) (Options, error) {
	var o Options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h", "--help":
			o.Help = true
		case "-d", "--debug":
			o.Debug = true
		case "-v", "--verbose":
			o.Verbose = true
		case "-r", "--reinstall":
			o.Reinstall = true
		case "--no-color":
			o.NoColor = true
		case "-g":
			i++
			if i >= len(args) {
				return Options{}, fmt.Errorf("-g requires a token value")
			}
			o.Token = args[i]
		default:
			return Options{}, fmt.Errorf("unknown arg: %s", args[i])
		}
	}
	return o, nil
}

// DefaultBaseDir resolves the configuration directory. MCPSETUP_HOME
// overrides for tests; otherwise ~/.aws/amazonq.
func DefaultBaseDir() (string, error) {
	if dir := os.Getenv("MCPSETUP_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aws", "amazonq"), nil
}

// LoadSettings reads settings.yaml from dir if present. A missing file
// yields zero settings; a malformed file is an error the caller reports
// as advisory.
func LoadSettings(dir string) (Settings, error) {
	var s Settings
	b, err := os.ReadFile(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, err
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, fmt.Errorf("settings.yaml: %w", err)
	}
	return s, nil
}

// Finalize merges settings under the already-parsed flags and pins the
// base directory. The result is the Options value the run uses.
func Finalize(o Options, s Settings) (Options, error) {
	if s.NoColor {
		o.NoColor = true
	}
	if s.Verbose {
		o.Verbose = true
	}
	if o.BaseDir == "" {
		if s.BaseDir != "" {
			o.BaseDir = s.BaseDir
		} else {
			dir, err := DefaultBaseDir()
			if err != nil {
				return Options{}, err
			}
			o.BaseDir = dir
		}
	}
	return o, nil
}

// Package secret persists the GitHub access token that unlocks the
// repository-research provider.
package secret

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/vsavkov/mcpsetup/internal/prompt"
)

// FileName is the token file inside the base directory.
const FileName = "github_token.txt"

// ErrValidationAborted is returned when the token fails the shape check
// and the user declines to persist it anyway.
var ErrValidationAborted = errors.New("token validation aborted")

// tokenShape covers classic GitHub token prefixes. Advisory: a mismatch
// prompts, it does not hard-fail.
var tokenShape = regexp.MustCompile(`^(ghp_|gho_|ghu_|ghs_)[A-Za-z0-9]{36,40}$`)

// Store reads and writes the token file with owner-only permissions.
type Store struct {
	dir    string
	prompt prompt.Prompter
}

func NewStore(dir string, p prompt.Prompter) *Store {
	return &Store{dir: dir, prompt: p}
}

func (s *Store) path() string {
	return filepath.Join(s.dir, FileName)
}

// Load returns the persisted token, or "" when none exists.
func (s *Store) Load() (string, error) {
	b, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Save validates the token shape, confirming with the user on a
// mismatch, then writes it with 0600 permissions, replacing any prior
// value.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if !tokenShape.MatchString(token) {
		ok, err := s.prompt.Confirm("Token does not look like a GitHub token (ghp_/gho_/ghu_/ghs_ prefix). Save anyway?", false)
		if err != nil {
			return fmt.Errorf("confirm token: %w", err)
		}
		if !ok {
			return ErrValidationAborted
		}
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	if err := os.WriteFile(s.path(), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	// WriteFile does not tighten the mode of a pre-existing file.
	if err := os.Chmod(s.path(), 0o600); err != nil {
		return fmt.Errorf("chmod token: %w", err)
	}
	return nil
}

// ValidShape reports whether the token matches the known pattern family.
func ValidShape(token string) bool {
	return tokenShape.MatchString(strings.TrimSpace(token))
}

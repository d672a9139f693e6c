package mcpdoc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// BackupTimeFormat names backup files mcp-backup-<YYYY-MM-DD-HH:MM:SS>.json.
const BackupTimeFormat = "2006-01-02-15:04:05"

// Backup copies the file at path verbatim to a timestamped sibling and
// verifies the copy by digest before reporting success. Callers treat
// any error as fatal: the original is never overwritten unbacked-up.
func Backup(path string, now time.Time) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	dst := filepath.Join(dir, fmt.Sprintf("%s-backup-%s%s", stem, now.Format(BackupTimeFormat), ext))

	if err := os.WriteFile(dst, src, 0o600); err != nil {
		return "", fmt.Errorf("write backup %s: %w", dst, err)
	}

	copied, err := os.ReadFile(dst)
	if err != nil {
		return "", fmt.Errorf("read back %s: %w", dst, err)
	}
	srcSum := blake3.Sum256(src)
	dstSum := blake3.Sum256(copied)
	if !bytes.Equal(srcSum[:], dstSum[:]) {
		return "", fmt.Errorf("backup %s digest mismatch with %s", dst, path)
	}
	return dst, nil
}

package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds the canonical runtime folder layout under the DB path.
type Paths struct {
	Store  string
	State  string
	Backup string
	Tmp    string
}

// PathsVar is populated by EnsureStateDirs and read by other packages.
var PathsVar Paths

// EnsureStateDirs ensures the runtime folder layout exists under the
// provided DB path. It rejects symlinks and permissive modes, and verifies
// each directory is writable by the process.
func EnsureStateDirs(dbPath string) error {
	storePath := filepath.Join(dbPath, "store")
	statePath := filepath.Join(dbPath, "state")
	backupPath := filepath.Join(statePath, "backup")
	tmpPath := filepath.Join(statePath, "tmp")

	for _, p := range []string{storePath, backupPath, tmpPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
			return fmt.Errorf("cannot create parent for %s: %w", p, err)
		}

		if fi, err := os.Lstat(p); err == nil {
			if fi.Mode()&os.ModeSymlink != 0 {
				return fmt.Errorf("path is a symlink: %s", p)
			}
			if !fi.IsDir() {
				return fmt.Errorf("path exists and is not a directory: %s", p)
			}
			if fi.Mode().Perm()&0o022 != 0 {
				return fmt.Errorf("path has permissive mode (group/other write): %s", p)
			}
		}

		if err := os.MkdirAll(p, 0o700); err != nil {
			return fmt.Errorf("cannot create path %s: %w", p, err)
		}

		// writability check: create and remove a temp file
		tmp, err := os.CreateTemp(p, ".validate-*")
		if err != nil {
			return fmt.Errorf("path not writable: %s: %w", p, err)
		}
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	PathsVar = Paths{Store: storePath, State: statePath, Backup: backupPath, Tmp: tmpPath}
	return nil
}

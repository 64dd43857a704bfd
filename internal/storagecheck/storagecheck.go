// Package storagecheck mechanically verifies the runtime storage contract:
// every scratch directory the hosting environment hands the process must be
// free of user-derived residue. The service itself never writes file bytes
// anywhere, so any entry found in a scratch directory is a policy violation.
//
// Reported errors carry entry counts only, never entry names. A leaked
// filename in an error message would defeat the policy being verified.
package storagecheck

import (
	"errors"
	"fmt"
	"os"
)

// ErrResidue reports that a scratch directory is not empty.
var ErrResidue = errors.New("scratch directory holds residue")

// Residue returns the number of entries in dir. A missing directory counts
// as empty: nothing can persist in a path that does not exist.
func Residue(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scratch dir: %w", err)
	}
	return len(entries), nil
}

// Verify checks every configured scratch directory and returns an error
// naming the count of offending entries per directory index.
func Verify(dirs []string) error {
	for i, dir := range dirs {
		n, err := Residue(dir)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: dir %d holds %d entries", ErrResidue, i, n)
		}
	}
	return nil
}

// Package filex provides small filesystem helpers for the CLI.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureSubDir makes sure dirName exists under the current working directory
// and returns its absolute path. An existing directory is fine; a regular
// file by that name is an error.
func EnsureSubDir(dirName string) (string, error) {
	dir, err := filepath.Abs(dirName)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dirName, err)
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if err := os.Mkdir(dir, 0o770); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	case err != nil:
		return "", err
	case !info.IsDir():
		return "", fmt.Errorf("%s exists and is not a directory", dir)
	}
	return dir, nil
}

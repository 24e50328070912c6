package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir (and parents) if needed and returns its absolute path.
// A relative dir is resolved against the current working directory.
func EnsureDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// FreePath returns a path inside dir for name that does not exist yet,
// appending " (n)" before the extension on collisions. Only the base of name
// is used so server-supplied names cannot escape dir.
func FreePath(dir, name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "download"
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := filepath.Join(dir, base)
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
}

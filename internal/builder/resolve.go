package builder

import (
	"os"
	"path/filepath"
	"strings"
)

// resolveLocal joins ref onto the directory holding fromFile and reports
// whether the target exists. Any stat failure, missing file included, yields
// ok == false, errors never escape to the caller. Scheme or protocol-relative
// references must be filtered out before calling this.
func resolveLocal(ref, fromFile string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	p := filepath.Clean(filepath.Join(filepath.Dir(fromFile), filepath.FromSlash(ref)))
	if _, err := os.Stat(p); err != nil {
		return "", false
	}
	return p, true
}

func isExternalRef(ref string) bool {
	return strings.HasPrefix(ref, "http") || strings.HasPrefix(ref, "//")
}

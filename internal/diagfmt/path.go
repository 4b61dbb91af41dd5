package diagfmt

import (
	"path/filepath"
)

func formatPath(path string, mode PathMode, base string) string {
	if path == "" {
		return ""
	}
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	case PathModeRelative:
		if base == "" {
			return path
		}
		absPath, errP := filepath.Abs(path)
		absBase, errB := filepath.Abs(base)
		if errP != nil || errB != nil {
			return path
		}
		if rel, err := filepath.Rel(absBase, absPath); err == nil {
			return rel
		}
	case PathModeBasename:
		return filepath.Base(path)
	}
	return path
}

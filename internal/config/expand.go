package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde resolves a leading "~" or "~/" against the current user's
// home directory. "~name" forms and unresolvable homes are returned as is.
func ExpandTilde(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

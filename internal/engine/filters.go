package engine

import (
	"strings"

	"github.com/sensigrep/sensigrep/internal/audit"
)

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
}

// Media and native binaries never decode as text. Containers and classes are
// deliberately absent: they are unwrapped, not skipped.
var defaultExcludeFileSuffixes = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".ico", ".svg",
	".mp3", ".mp4", ".avi", ".mov", ".wav",
	".pdf", ".7z", ".rar",
	".exe", ".dll", ".so", ".dylib",
	".woff", ".woff2", ".ttf",
}

var defaultExcludeFileNames = map[string]bool{
	".DS_Store":   true,
	"Thumbs.db":   true,
	"desktop.ini": true,

	audit.FileName:           true,
	audit.FileName + ".lock": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(rel string) bool {
	parts := strings.Split(rel, "/")
	if defaultExcludeFileNames[parts[len(parts)-1]] {
		return true
	}
	lower := strings.ToLower(rel)
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

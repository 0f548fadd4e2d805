package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsDevRun checks if the current process is running via `go run` or `go test`.
// It relies on the fact that these commands build binaries in temporary
// directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	tempDir := os.TempDir()
	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(tempDir)) {
		return true
	}

	if strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe") {
		return true
	}

	return false
}

// ResolveStateDir determines the actual state directory based on safety
// rules. When forceTemp is set, the directory is re-rooted into a temporary
// location so dev runs and demos never pollute real journal state.
func ResolveStateDir(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return defaultStateDir()
		}
		return userPath
	}

	// If the userPath is ALREADY inside the system temp directory we assume
	// it is intentional (e.g. created by t.TempDir()) and trust it.
	cleanUserPath := filepath.Clean(userPath)
	tempRoot := os.TempDir()
	rel, err := filepath.Rel(tempRoot, cleanUserPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	baseTemp := filepath.Join(os.TempDir(), "whisper-dev")
	subName := filepath.Base(userPath)
	if userPath == "" || subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(baseTemp, subName)
}

// defaultStateDir is where journal state lives when no directory is given:
// a "whisper" folder under the platform's user config dir, falling back to
// the working directory.
func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "whisper")
	}
	return ".whisper"
}

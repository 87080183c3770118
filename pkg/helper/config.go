package helper

import (
	"os"
	"path/filepath"
	"strings"
)

// GetCfgPath returns the path to the configuration file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. Check ./{filename} and ./configs/{filename}
// 3. Check ~/.xint/{filename}
// 4. Otherwise, fallback to /etc/xint/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}

	if filepath.IsAbs(filename) {
		return filename
	}

	if p := findInDirs(filename, currentDirs()...); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		if p := findInDirs(filename, filepath.Join(home, ".xint")); p != "" {
			return p
		}
	}

	// fallback
	return filepath.Join("/etc/xint", filename)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func currentDirs() []string {
	currentDir, err := os.Getwd()
	if err != nil || currentDir == "" {
		return nil
	}
	return []string{currentDir, filepath.Join(currentDir, "configs")}
}

func findInDirs(filename string, dirs ...string) string {
	for _, dir := range dirs {
		candidatePath := filepath.Join(dir, filename)
		if _, err := os.Stat(candidatePath); err != nil {
			continue
		}
		if absPath, err := filepath.Abs(candidatePath); err == nil {
			return absPath
		}
	}
	return ""
}

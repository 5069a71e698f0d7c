package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tberrors "github.com/abatilo/taskboard/internal/errors"
)

const (
	rootDir        = ".taskboard"
	defaultProfile = "default"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// ProfileDir returns ~/.taskboard/<profile>. Without a profile the
// enclosing git project names the directory, and outside a repository the
// "default" profile is used.
func ProfileDir(profile string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, rootDir, ProfileName(profile)), nil
}

// DefaultDir returns the task directory of a profile.
func DefaultDir(profile string) (string, error) {
	dir, err := ProfileDir(profile)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasks"), nil
}

// ProfileName resolves a profile to a safe directory name.
func ProfileName(profile string) string {
	if profile == "" {
		if root, err := FindProjectRoot(); err == nil {
			profile = root
		}
	}
	if s := SanitizePath(profile); s != "" {
		return s
	}
	return defaultProfile
}

// FindProjectRoot walks up from cwd looking for .git directory.
// Returns the directory containing .git, or error if not found.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", tberrors.NotInRepoError{}
		}
		dir = parent
	}
}

// SanitizePath converts a path or name to a safe directory name.
// "/Users/me/work" -> "Users-me-work"
func SanitizePath(path string) string {
	result := strings.TrimPrefix(path, "/")
	result = unsafeChars.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

package prefs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
)

const prefsFile = "prefs.json"

type filePrefs struct {
	ViewMode  string    `json:"view_mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileStore keeps the mode in prefs.json under a profile directory.
type FileStore struct {
	basePath string
}

// NewFileStore creates a FileStore writing to basePath/prefs.json.
func NewFileStore(basePath string) *FileStore {
	return &FileStore{basePath: basePath}
}

// Path returns the full path to the preferences file.
func (s *FileStore) Path() string {
	return filepath.Join(s.basePath, prefsFile)
}

// Load returns the stored mode. A missing or unreadable file, or an unknown
// value, yields DefaultMode.
func (s *FileStore) Load(context.Context) (Mode, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return DefaultMode, nil
	}
	if err != nil {
		return DefaultMode, err
	}

	var p filePrefs
	if unmarshalErr := sonic.ConfigStd.Unmarshal(data, &p); unmarshalErr != nil {
		return DefaultMode, nil
	}
	return Resolve(p.ViewMode), nil
}

// Save writes the mode.
func (s *FileStore) Save(_ context.Context, m Mode) error {
	if err := validate(m); err != nil {
		return err
	}
	//nolint:gosec // G301: 0755 is appropriate for user-accessible profile directory
	if mkdirErr := os.MkdirAll(s.basePath, 0o755); mkdirErr != nil {
		return mkdirErr
	}

	data, err := sonic.ConfigStd.MarshalIndent(filePrefs{ViewMode: string(m), UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}

	//nolint:gosec // G306: 0644 is appropriate for user-readable preference files
	return os.WriteFile(s.Path(), data, 0o644)
}

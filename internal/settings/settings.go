package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paperflow-app/paperflow/internal/domain"
)

// Settings is the user preferences document, stored as a JSON file next
// to the database rather than inside it.
type Settings struct {
	Theme                  string `json:"theme"`
	DefaultWorkspaceID     string `json:"defaultWorkspaceId"`
	GlobalShortcutsEnabled bool   `json:"globalShortcutsEnabled"`
}

// Default returns the settings used when no file exists yet.
func Default() Settings {
	return Settings{
		Theme:                  "system",
		DefaultWorkspaceID:     domain.DefaultWorkspaceID,
		GlobalShortcutsEnabled: true,
	}
}

// Load reads settings from path. A missing file yields defaults; a
// corrupt file is an error rather than silently resetting preferences.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, domain.IOError(path, "read settings", err)
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, domain.BadRequest(fmt.Sprintf("settings file %s is corrupt: %v", path, err))
	}
	return s, nil
}

// Save writes settings to path atomically via a temp file rename.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return domain.Internal(fmt.Errorf("encode settings: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.IOError(filepath.Dir(path), "create settings dir", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.IOError(tmp, "write settings", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return domain.IOError(path, "replace settings", err)
	}
	return nil
}

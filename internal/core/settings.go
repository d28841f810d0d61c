package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	vscodeDirName        = ".vscode"
	settingsFileName     = "settings.json"
	scriptPathSettingKey = "toolrig\\.scriptPath"
)

// WorkspaceSettingsPath returns the path to the editor workspace
// settings file for a project.
func WorkspaceSettingsPath(projectDir string) string {
	return filepath.Join(projectDir, vscodeDirName, settingsFileName)
}

// ReadWorkspaceScriptPath returns the script path persisted in the
// workspace settings, or "" when unset or the file is missing.
func ReadWorkspaceScriptPath(projectDir string) string {
	data, err := os.ReadFile(WorkspaceSettingsPath(projectDir))
	if err != nil {
		return ""
	}
	return gjson.GetBytes(data, scriptPathSettingKey).String()
}

// WriteWorkspaceScriptPath persists the script path into the workspace
// settings file, creating it (and .vscode/) on demand. Other settings
// in the file are left untouched.
func WriteWorkspaceScriptPath(projectDir, scriptPath string) error {
	path := WorkspaceSettingsPath(projectDir)

	content := "{}"
	data, err := os.ReadFile(path)
	if err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading settings: %w", err)
	}

	newContent, err := sjson.Set(content, scriptPathSettingKey, scriptPath)
	if err != nil {
		return fmt.Errorf("writing setting: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(newContent), 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

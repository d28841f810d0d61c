package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWorkspaceScriptPath_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	if got := ReadWorkspaceScriptPath(dir); got != "" {
		t.Errorf("ReadWorkspaceScriptPath on empty workspace = %q", got)
	}

	if err := WriteWorkspaceScriptPath(dir, "/opt/intel/oneapi/setvars.sh"); err != nil {
		t.Fatalf("WriteWorkspaceScriptPath: %v", err)
	}

	if got := ReadWorkspaceScriptPath(dir); got != "/opt/intel/oneapi/setvars.sh" {
		t.Errorf("ReadWorkspaceScriptPath = %q", got)
	}
}

func TestWriteWorkspaceScriptPath_PreservesOtherSettings(t *testing.T) {
	dir := t.TempDir()
	settingsPath := WorkspaceSettingsPath(dir)
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		t.Fatal(err)
	}
	existing := `{"editor.formatOnSave": true, "toolrig.scriptPath": "/old/setvars.sh"}`
	if err := os.WriteFile(settingsPath, []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteWorkspaceScriptPath(dir, "/new/setvars.sh"); err != nil {
		t.Fatalf("WriteWorkspaceScriptPath: %v", err)
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, `"editor.formatOnSave"`) {
		t.Errorf("other settings dropped: %s", content)
	}
	if got := ReadWorkspaceScriptPath(dir); got != "/new/setvars.sh" {
		t.Errorf("ReadWorkspaceScriptPath = %q", got)
	}
}

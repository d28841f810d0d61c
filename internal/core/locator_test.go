package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("export X=1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocator_ExplicitSettingFirst(t *testing.T) {
	dir := t.TempDir()
	explicit := writeScript(t, filepath.Join(dir, "custom"), "setvars.sh")
	writeScript(t, filepath.Join(dir, "global"), "setvars.sh")

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	settings := Settings{
		ScriptName: "setvars.sh",
		ScriptPath: explicit,
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: filepath.Join(dir, "global"),
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, "").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	if candidates[0].Path != explicit {
		t.Errorf("candidates[0] = %s, want %s", candidates[0].Path, explicit)
	}
	if candidates[0].Source != SourceSetting {
		t.Errorf("candidates[0].Source = %s, want %s", candidates[0].Source, SourceSetting)
	}
	if len(candidates) != 2 {
		t.Errorf("len(candidates) = %d, want 2", len(candidates))
	}
}

func TestLocator_WorkspaceSettingBeatsConfig(t *testing.T) {
	dir := t.TempDir()
	workspace := writeScript(t, filepath.Join(dir, "ws"), "setvars.sh")
	config := writeScript(t, filepath.Join(dir, "cfg"), "setvars.sh")

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	settings := Settings{
		ScriptName: "setvars.sh",
		ScriptPath: config,
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: filepath.Join(dir, "missing"),
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, workspace).Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if candidates[0].Path != workspace {
		t.Errorf("candidates[0] = %s, want %s", candidates[0].Path, workspace)
	}
}

func TestLocator_PathScan(t *testing.T) {
	dir := t.TempDir()
	binDir := filepath.Join(dir, "bin")
	script := writeScript(t, binDir, "setvars.sh")

	t.Setenv("PATH", binDir)
	settings := Settings{
		ScriptName: "setvars.sh",
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: filepath.Join(dir, "missing"),
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, "").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Path != script || candidates[0].Source != SourcePath {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestLocator_EnvVarRoot(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "oneapi")
	script := writeScript(t, root, "setvars.sh")

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	t.Setenv("TOOLRIG_TEST_ROOT", root)
	settings := Settings{
		ScriptName: "setvars.sh",
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: filepath.Join(dir, "missing"),
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, "").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Path != script || candidates[0].Source != SourceEnvVar {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestLocator_FindFallback(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "global")
	// Script nested below the canonical location, only reachable via find.
	nested := writeScript(t, filepath.Join(root, "2024.1", "env"), "setvars.sh")

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	settings := Settings{
		ScriptName: "setvars.sh",
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: root,
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, "").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Path != nested || candidates[0].Source != SourceSearch {
		t.Errorf("candidates = %+v", candidates)
	}
}

func TestLocator_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "oneapi")
	script := writeScript(t, root, "setvars.sh")

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	t.Setenv("TOOLRIG_TEST_ROOT", root)
	settings := Settings{
		ScriptName: "setvars.sh",
		ScriptPath: script, // same file via two stages
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: root,
		UserRoot:   filepath.Join(dir, "missing"),
	}

	candidates, err := NewLocator(settings, "").Locate(context.Background())
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len(candidates) = %d, want 1: %+v", len(candidates), candidates)
	}
	if candidates[0].Source != SourceSetting {
		t.Errorf("Source = %s, want %s", candidates[0].Source, SourceSetting)
	}
}

func TestLocator_NotFound(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("PATH", "/usr/bin:/bin") // no setvars.sh here, find(1) still reachable
	settings := Settings{
		ScriptName: "setvars.sh",
		EnvVar:     "TOOLRIG_TEST_ROOT",
		GlobalRoot: filepath.Join(dir, "missing"),
		UserRoot:   filepath.Join(dir, "missing"),
	}

	_, err := NewLocator(settings, "").Locate(context.Background())
	if !errors.Is(err, ErrNoScript) {
		t.Fatalf("err = %v, want ErrNoScript", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	if got := expandPath("~/intel/oneapi"); got != filepath.Join(home, "intel/oneapi") {
		t.Errorf("expandPath(~/intel/oneapi) = %s", got)
	}

	t.Setenv("TOOLRIG_EXPAND", "/opt/x")
	if got := expandPath("$TOOLRIG_EXPAND/sub"); got != "/opt/x/sub" {
		t.Errorf("expandPath($TOOLRIG_EXPAND/sub) = %s", got)
	}
}

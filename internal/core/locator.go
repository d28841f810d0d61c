package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoScript is returned when no environment script could be located.
var ErrNoScript = errors.New("environment script not found")

// findMaxDepth bounds the shelled find fallback under the install roots.
const findMaxDepth = 3

// Locator searches the ordered candidate locations for the vendor
// environment script.
type Locator struct {
	settings Settings
	// workspaceScript is the path persisted in the editor workspace
	// settings, checked before everything else. May be empty.
	workspaceScript string
}

// NewLocator creates a Locator for the given resolved settings.
// workspaceScript is the script path from .vscode/settings.json, if any.
func NewLocator(settings Settings, workspaceScript string) *Locator {
	return &Locator{settings: settings, workspaceScript: workspaceScript}
}

// Locate runs all discovery stages in order and returns the deduplicated
// candidates. Candidate order reflects stage priority. Returns ErrNoScript
// when nothing was found.
func (l *Locator) Locate(ctx context.Context) ([]ScriptCandidate, error) {
	var out []ScriptCandidate
	seen := make(map[string]bool)

	add := func(path string, src CandidateSource) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if seen[abs] {
			return
		}
		if !fileExists(abs) {
			return
		}
		seen[abs] = true
		out = append(out, ScriptCandidate{Path: abs, Source: src})
	}

	// 1. Explicit setting: workspace first, then global config.
	if l.workspaceScript != "" {
		add(expandPath(l.workspaceScript), SourceSetting)
	}
	if l.settings.ScriptPath != "" {
		add(expandPath(l.settings.ScriptPath), SourceSetting)
	}

	// 2. PATH scan.
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		if dir == "" {
			continue
		}
		add(filepath.Join(dir, l.settings.ScriptName), SourcePath)
	}

	// 3. Known environment variable pointing at the install root.
	if root := os.Getenv(l.settings.EnvVar); root != "" {
		add(filepath.Join(root, l.settings.ScriptName), SourceEnvVar)
		add(filepath.Join(root, "..", l.settings.ScriptName), SourceEnvVar)
	}

	// 4. Global install root.
	globalRoot := expandPath(l.settings.GlobalRoot)
	add(filepath.Join(globalRoot, l.settings.ScriptName), SourceGlobalRoot)

	// 5. Per-user install root.
	userRoot := expandPath(l.settings.UserRoot)
	add(filepath.Join(userRoot, l.settings.ScriptName), SourceUserRoot)

	// 6. Shelled find under both roots for non-canonical layouts.
	for _, root := range []string{globalRoot, userRoot} {
		for _, p := range findScripts(ctx, root, l.settings.ScriptName) {
			add(p, SourceSearch)
		}
	}

	if len(out) == 0 {
		return nil, ErrNoScript
	}
	return out, nil
}

// findScripts shells out to find(1) to locate the script under root.
// Errors are swallowed: a missing root or missing find binary simply
// yields no candidates.
func findScripts(ctx context.Context, root, name string) []string {
	if !dirExists(root) {
		return nil
	}

	cmd := exec.CommandContext(ctx, "find", root,
		"-maxdepth", strconv.Itoa(findMaxDepth),
		"-name", name, "-type", "f")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil
	}

	var paths []string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}

// expandPath expands a leading ~ and any $VAR references.
func expandPath(p string) string {
	if strings.Contains(p, "$") {
		p = os.ExpandEnv(p)
	}
	if strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		p = filepath.Join(home, p[2:])
	} else if p == "~" {
		home, _ := os.UserHomeDir()
		p = home
	}
	return p
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

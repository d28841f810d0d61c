package core

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrNoBuildSystem is returned when a project has neither a Makefile nor
// a CMakeLists.txt.
var ErrNoBuildSystem = errors.New("no Makefile or CMakeLists.txt found")

// makeTargetFilter is the classic awk snippet (as used by bash
// completion) that extracts target names from make's internal database.
const makeTargetFilter = `awk -F: '/^[a-zA-Z0-9][^$#\/\t=]*:([^=]|$)/ {split($1,A,/ /);for(i in A)print A[i]}'`

var cmakeTargetPattern = regexp.MustCompile(`(?m)^\s*(?:add_executable|add_custom_target)\s*\(\s*([A-Za-z0-9_.+-]+)`)

// DetectBuildSystem inspects projectDir for build files. When both make
// and cmake files are present, cmake wins.
func DetectBuildSystem(projectDir string) (BuildSystem, error) {
	if fileExists(filepath.Join(projectDir, "CMakeLists.txt")) {
		return BuildSystemCMake, nil
	}
	if fileExists(filepath.Join(projectDir, "Makefile")) || fileExists(filepath.Join(projectDir, "makefile")) {
		return BuildSystemMake, nil
	}
	return "", ErrNoBuildSystem
}

// TargetScanner discovers build targets and executable artifacts in a
// project directory by shelling out to the usual OS utilities.
type TargetScanner struct {
	projectDir string
}

// NewTargetScanner creates a TargetScanner for projectDir.
func NewTargetScanner(projectDir string) *TargetScanner {
	return &TargetScanner{projectDir: projectDir}
}

// Targets discovers build targets for the given build system.
func (t *TargetScanner) Targets(ctx context.Context, system BuildSystem) ([]Target, error) {
	switch system {
	case BuildSystemMake:
		return t.makeTargets(ctx)
	case BuildSystemCMake:
		return t.cmakeTargets(ctx)
	default:
		return nil, fmt.Errorf("unknown build system %q", system)
	}
}

// makeTargets dumps make's rule database without running anything and
// filters it down to target names.
func (t *TargetScanner) makeTargets(ctx context.Context) ([]Target, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c",
		"make -pRrq : 2>/dev/null | "+makeTargetFilter)
	cmd.Dir = t.projectDir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// make -q exits non-zero when targets are out of date; only a
	// completely empty dump is treated as failure.
	_ = cmd.Run()

	seen := make(map[string]bool)
	var targets []Target
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || seen[name] {
			continue
		}
		// Internal and special targets.
		if strings.HasPrefix(name, ".") || strings.Contains(name, "%") || name == "Makefile" || name == "makefile" {
			continue
		}
		seen[name] = true
		targets = append(targets, Target{Name: name, System: BuildSystemMake})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no make targets found in %s", t.projectDir)
	}
	sortTargets(targets)
	return targets, nil
}

// cmakeTargets finds CMakeLists.txt files via find(1) and scans them for
// add_executable / add_custom_target declarations.
func (t *TargetScanner) cmakeTargets(ctx context.Context) ([]Target, error) {
	files := t.findFiles(ctx, "-name", "CMakeLists.txt", "-type", "f")
	if len(files) == 0 {
		return nil, fmt.Errorf("no CMakeLists.txt found in %s", t.projectDir)
	}

	seen := make(map[string]bool)
	var targets []Target
	for _, file := range files {
		data, err := os.ReadFile(filepath.Join(t.projectDir, file))
		if err != nil {
			continue
		}
		dir := filepath.Dir(file)
		if dir == "." {
			dir = ""
		}
		for _, m := range cmakeTargetPattern.FindAllSubmatch(data, -1) {
			name := string(m[1])
			if seen[name] {
				continue
			}
			seen[name] = true
			targets = append(targets, Target{Name: name, System: BuildSystemCMake, Dir: dir})
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no cmake targets found in %s", t.projectDir)
	}
	sortTargets(targets)
	return targets, nil
}

// Executables finds executable artifacts under the project directory,
// returned relative to it and sorted. Object files, libraries, scripts
// and CMake bookkeeping binaries are filtered out.
func (t *TargetScanner) Executables(ctx context.Context) ([]string, error) {
	files := t.findFiles(ctx, "-type", "f", "-perm", "-u+x",
		"!", "-name", "*.so", "!", "-name", "*.so.*",
		"!", "-name", "*.a", "!", "-name", "*.o",
		"!", "-name", "*.sh", "!", "-path", "*/CMakeFiles/*",
		"!", "-path", "*/.git/*", "!", "-path", "*/"+storeDirName+"/*")

	sort.Strings(files)
	return files, nil
}

// findFiles shells out to find(1) rooted at the project dir with the
// given predicates, returning project-relative paths.
func (t *TargetScanner) findFiles(ctx context.Context, predicates ...string) []string {
	args := append([]string{".", "-maxdepth", strconv.Itoa(findMaxDepth)}, predicates...)
	cmd := exec.CommandContext(ctx, "find", args...)
	cmd.Dir = t.projectDir
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil
	}

	var files []string
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		files = append(files, strings.TrimPrefix(line, "./"))
	}
	return files
}

func sortTargets(targets []Target) {
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Name < targets[j].Name
	})
}

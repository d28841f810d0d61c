package editor

import (
	"fmt"
	"path/filepath"

	"github.com/toolrig/toolrig/internal/core"
)

const (
	tasksFileName = "tasks.json"
	tasksVersion  = "2.0.0"
	tasksArrayPtr = "/tasks"
)

// TasksFile is the project's .vscode/tasks.json.
type TasksFile struct {
	doc *Document
}

// OpenTasks loads (or initializes) the tasks document for a project and
// ensures the version field and tasks array exist.
func OpenTasks(projectDir string) (*TasksFile, error) {
	path := filepath.Join(projectDir, ".vscode", tasksFileName)
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := doc.EnsureString("/version", tasksVersion); err != nil {
		return nil, err
	}
	if err := doc.EnsureArray(tasksArrayPtr); err != nil {
		return nil, err
	}
	return &TasksFile{doc: doc}, nil
}

// Path returns the tasks.json file path.
func (t *TasksFile) Path() string { return t.doc.Path() }

// Labels returns the labels of all existing tasks.
func (t *TasksFile) Labels() []string {
	return t.doc.StringMembers(tasksArrayPtr, "label")
}

// HasLabel reports whether a task with the given label already exists.
func (t *TasksFile) HasLabel(label string) bool {
	for _, l := range t.Labels() {
		if l == label {
			return true
		}
	}
	return false
}

// AddTask appends a shell build task for the given target. When profile
// is non-empty the build command runs under the stored environment via
// `toolrig env`.
func (t *TasksFile) AddTask(label string, target core.Target, profile string) error {
	command := buildCommand(target)
	if profile != "" {
		command = fmt.Sprintf("toolrig env --name %s -- sh -c %q", profile, command)
	}

	task := map[string]interface{}{
		"label":   label,
		"type":    "shell",
		"command": command,
		"options": map[string]interface{}{
			"cwd": "${workspaceFolder}",
		},
		"problemMatcher": []string{"$gcc"},
		"group":          "build",
	}
	data, err := marshalValue(task)
	if err != nil {
		return fmt.Errorf("marshaling task: %w", err)
	}
	return t.doc.Append(tasksArrayPtr, data)
}

// Save writes the document back to disk.
func (t *TasksFile) Save() error {
	return t.doc.Save()
}

// buildCommand produces the shell command line for a target.
func buildCommand(target core.Target) string {
	switch target.System {
	case core.BuildSystemCMake:
		configure := "mkdir -p build && cd build && cmake"
		if target.Dir != "" {
			configure += " " + shellPath("${workspaceFolder}/"+target.Dir)
		} else {
			configure += " .."
		}
		return configure + " && make " + target.Name
	default:
		return "make " + target.Name
	}
}

// shellPath quotes a path for the generated shell command line.
func shellPath(p string) string {
	return `"` + p + `"`
}

// UniqueName derives a name not present in existing by appending a
// numeric suffix to base.
func UniqueName(existing []string, base string) string {
	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[e] = true
	}
	if !taken[base] {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken[candidate] {
			return candidate
		}
	}
}

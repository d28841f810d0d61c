package editor

import (
	"fmt"
	"path/filepath"
)

const (
	launchFileName = "launch.json"
	launchVersion  = "0.2.0"
	launchArrayPtr = "/configurations"
)

// LaunchFile is the project's .vscode/launch.json.
type LaunchFile struct {
	doc *Document
}

// OpenLaunch loads (or initializes) the launch document for a project
// and ensures the version field and configurations array exist.
func OpenLaunch(projectDir string) (*LaunchFile, error) {
	path := filepath.Join(projectDir, ".vscode", launchFileName)
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := doc.EnsureString("/version", launchVersion); err != nil {
		return nil, err
	}
	if err := doc.EnsureArray(launchArrayPtr); err != nil {
		return nil, err
	}
	return &LaunchFile{doc: doc}, nil
}

// Path returns the launch.json file path.
func (l *LaunchFile) Path() string { return l.doc.Path() }

// Names returns the names of all existing launch configurations.
func (l *LaunchFile) Names() []string {
	return l.doc.StringMembers(launchArrayPtr, "name")
}

// HasName reports whether a configuration with the given name exists.
func (l *LaunchFile) HasName(name string) bool {
	for _, n := range l.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// AddConfiguration appends a gdb debug configuration for the given
// executable (project-relative path).
func (l *LaunchFile) AddConfiguration(name, executable string) error {
	cfg := map[string]interface{}{
		"name":            name,
		"type":            "cppdbg",
		"request":         "launch",
		"program":         "${workspaceFolder}/" + filepath.ToSlash(executable),
		"args":            []string{},
		"stopAtEntry":     false,
		"cwd":             "${workspaceFolder}",
		"environment":     []interface{}{},
		"externalConsole": false,
		"MIMode":          "gdb",
		"setupCommands": []interface{}{
			map[string]interface{}{
				"description":    "Enable pretty-printing for gdb",
				"text":           "-enable-pretty-printing",
				"ignoreFailures": true,
			},
		},
	}
	data, err := marshalValue(cfg)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}
	return l.doc.Append(launchArrayPtr, data)
}

// Save writes the document back to disk.
func (l *LaunchFile) Save() error {
	return l.doc.Save()
}

// LaunchName derives the default configuration name for an executable.
func LaunchName(executable string) string {
	return "Launch " + filepath.Base(executable) + " (gdb)"
}

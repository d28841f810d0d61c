// Package core provides the business logic for toolrig.
// It has zero UI dependencies and is independently testable.
package core

import "time"

// Config represents the toolrig configuration stored at ~/.toolrig/config.json.
type Config struct {
	Settings Settings `json:"settings"`
}

// Settings holds the knobs for script discovery and environment capture.
// Defaults target the common oneAPI-style install layout; everything is
// overridable globally or per project.
type Settings struct {
	// ScriptName is the filename of the vendor environment script.
	ScriptName string `json:"scriptName" yaml:"script_name"`
	// ScriptPath, when set, short-circuits discovery.
	ScriptPath string `json:"scriptPath,omitempty" yaml:"script_path"`
	// EnvVar names an environment variable whose value points at the
	// toolchain install root.
	EnvVar string `json:"envVar" yaml:"env_var"`
	// GlobalRoot is the system-wide install root.
	GlobalRoot string `json:"globalRoot" yaml:"global_root"`
	// UserRoot is the per-user install root (may contain ~).
	UserRoot string `json:"userRoot" yaml:"user_root"`
	// Shell used to source the script. Empty means $SHELL, then /bin/sh.
	Shell string `json:"shell,omitempty" yaml:"shell"`
	// CaptureTimeoutSeconds bounds the capture subprocess. Zero means 60.
	CaptureTimeoutSeconds int `json:"captureTimeoutSeconds,omitempty" yaml:"capture_timeout_seconds"`
	// AutoGitignore controls whether .toolrig/ is added to .gitignore
	// on first profile save.
	AutoGitignore bool `json:"autoGitignore" yaml:"auto_gitignore"`
}

// Profile is a named environment delta captured from the vendor script,
// stored per project under .toolrig/profiles/<name>.json.
type Profile struct {
	Version    int               `json:"version"`
	Name       string            `json:"name"`
	Script     string            `json:"script"`
	ScriptArgs []string          `json:"scriptArgs,omitempty"`
	CapturedAt time.Time         `json:"capturedAt"`
	Env        map[string]string `json:"env"`
	Removed    []string          `json:"removed,omitempty"`
}

// EnvDelta is the difference between two environment snapshots.
type EnvDelta struct {
	Added   map[string]string // keys absent before sourcing
	Changed map[string]string // keys whose value differs after sourcing
	Removed []string          // keys absent after sourcing, sorted
}

// Flat merges Added and Changed into a single key -> value map.
func (d *EnvDelta) Flat() map[string]string {
	flat := make(map[string]string, len(d.Added)+len(d.Changed))
	for k, v := range d.Added {
		flat[k] = v
	}
	for k, v := range d.Changed {
		flat[k] = v
	}
	return flat
}

// Empty reports whether sourcing the script had no environment effect.
func (d *EnvDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// BuildSystem identifies the build tool driving a project.
type BuildSystem string

const (
	BuildSystemMake  BuildSystem = "make"
	BuildSystemCMake BuildSystem = "cmake"
)

// Target is a discovered build target.
type Target struct {
	Name   string      `json:"name"`
	System BuildSystem `json:"system"`
	// Dir is the directory the build command runs in, relative to the
	// project root. Empty means the root itself.
	Dir string `json:"dir,omitempty"`
}

// ScriptCandidate is a located environment script and where it came from.
type ScriptCandidate struct {
	Path   string          `json:"path"`
	Source CandidateSource `json:"source"`
}

// CandidateSource indicates which discovery stage produced a candidate.
type CandidateSource string

const (
	SourceSetting    CandidateSource = "setting"
	SourcePath       CandidateSource = "path"
	SourceEnvVar     CandidateSource = "env"
	SourceGlobalRoot CandidateSource = "global"
	SourceUserRoot   CandidateSource = "user"
	SourceSearch     CandidateSource = "search"
)

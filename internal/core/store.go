package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	storeDirName          = ".toolrig"
	profilesDirName       = "profiles"
	currentProfileVersion = 1
)

// ErrProfileNotFound is returned when a named profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// Store persists named environment profiles inside a project directory.
type Store struct {
	projectDir    string
	autoGitignore bool
}

// NewStore creates a Store rooted at projectDir. When autoGitignore is
// set, the storage directory is added to the project .gitignore on the
// first save.
func NewStore(projectDir string, autoGitignore bool) *Store {
	return &Store{projectDir: projectDir, autoGitignore: autoGitignore}
}

// Dir returns the storage directory for this project.
func (s *Store) Dir() string {
	return filepath.Join(s.projectDir, storeDirName)
}

func (s *Store) profilesDir() string {
	return filepath.Join(s.Dir(), profilesDirName)
}

func (s *Store) profilePath(name string) string {
	return filepath.Join(s.profilesDir(), name+".json")
}

// Save writes a profile atomically, creating the storage directory as
// needed. The profile name is sanitized before use.
func (s *Store) Save(p *Profile) error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	p.Name = SanitizeProfileName(p.Name)
	p.Version = currentProfileVersion

	if err := os.MkdirAll(s.profilesDir(), 0o755); err != nil {
		return fmt.Errorf("creating profiles directory: %w", err)
	}

	// Sort removals for deterministic output.
	sort.Strings(p.Removed)

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	data = append(data, '\n')

	path := s.profilePath(p.Name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving profile: %w", err)
	}

	if s.autoGitignore {
		if err := ensureGitignore(s.projectDir, storeDirName+"/"); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a profile by name. Returns ErrProfileNotFound if absent.
func (s *Store) Load(name string) (*Profile, error) {
	name = SanitizeProfileName(name)
	data, err := os.ReadFile(s.profilePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return nil, fmt.Errorf("reading profile %s: %w", name, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", name, err)
	}
	return &p, nil
}

// List returns all stored profiles sorted by name. A missing storage
// directory yields an empty list.
func (s *Store) List() ([]*Profile, error) {
	entries, err := os.ReadDir(s.profilesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profiles directory: %w", err)
	}

	var profiles []*Profile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		p, err := s.Load(name)
		if err != nil {
			continue // skip unreadable entries
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Delete removes a profile by name. Returns ErrProfileNotFound if absent.
// Empty storage directories are cleaned up afterwards.
func (s *Store) Delete(name string) error {
	name = SanitizeProfileName(name)
	path := s.profilePath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
		}
		return fmt.Errorf("deleting profile %s: %w", name, err)
	}

	cleanupEmptyDir(s.profilesDir())
	cleanupEmptyDir(s.Dir())
	return nil
}

// SanitizeProfileName lowercases a name and replaces anything outside
// [a-z0-9-] with a hyphen.
func SanitizeProfileName(name string) string {
	name = strings.ToLower(name)
	var result []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' {
			result = append(result, c)
		} else {
			result = append(result, '-')
		}
	}
	name = strings.Trim(string(result), "-")
	if len(name) > 64 {
		name = name[:64]
	}
	if name == "" {
		name = "default"
	}
	return name
}

// ensureGitignore adds entry to the project's .gitignore if not already
// present. Creates the file if it does not exist.
func ensureGitignore(projectDir, entry string) error {
	gitignorePath := filepath.Join(projectDir, ".gitignore")

	data, err := os.ReadFile(gitignorePath)
	if err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == entry {
				return nil // already present
			}
		}
		content := string(data)
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += entry + "\n"
		return os.WriteFile(gitignorePath, []byte(content), 0o644)
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	return os.WriteFile(gitignorePath, []byte(entry+"\n"), 0o644)
}

func cleanupEmptyDir(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	if len(entries) == 0 {
		_ = os.Remove(dir)
	}
}

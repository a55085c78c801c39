// Package scripted provides file-backed session collaborators for
// offline runs: a YAML script supplies the account, the assignment and
// its problems, and the harness plays them back through the same
// interfaces a live integration would implement.
package scripted

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Script is the on-disk description of one playback run.
type Script struct {
	// Account holds the credentials the harness accepts. When empty,
	// any credentials are accepted.
	Account AccountSpec `yaml:"account"`

	// Assignment identifies the assignment the harness serves. A script
	// without an assignment ID simulates an account with nothing to do.
	Assignment AssignmentSpec `yaml:"assignment"`

	// Problems are served in order, one per fetch.
	Problems []ProblemSpec `yaml:"problems"`

	dir string
}

// AccountSpec is the credential pair a script expects.
type AccountSpec struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// AssignmentSpec names the scripted assignment.
type AssignmentSpec struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// ProblemSpec is one problem entry. Text and Image are mutually
// optional but at least one must be set.
type ProblemSpec struct {
	ID    string `yaml:"id"`
	Text  string `yaml:"text"`
	Image string `yaml:"image"`
}

// Load reads and validates a script file. Relative image paths are
// resolved against the script's directory.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	s.dir = filepath.Dir(path)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the script for holes that would break playback.
func (s *Script) Validate() error {
	seen := make(map[string]bool, len(s.Problems))
	for i, p := range s.Problems {
		if p.ID == "" {
			return fmt.Errorf("problem %d: missing id", i+1)
		}
		if seen[p.ID] {
			return fmt.Errorf("problem %d: duplicate id %q", i+1, p.ID)
		}
		seen[p.ID] = true
		if p.Text == "" && p.Image == "" {
			return fmt.Errorf("problem %q: needs text or image", p.ID)
		}
	}
	if len(s.Problems) > 0 && s.Assignment.ID == "" {
		return fmt.Errorf("script has problems but no assignment id")
	}
	return nil
}

// imagePath resolves a problem's image reference against the script
// directory.
func (s *Script) imagePath(ref string) string {
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(s.dir, ref)
}

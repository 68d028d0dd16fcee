package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pfrankov/vibe-scribe-sub000/internal/domain"
)

// promptFile is the on-disk shape of an optional prompt override file.
type promptFile struct {
	Summary string `yaml:"summary"`
	Chunk   string `yaml:"chunk"`
	Combine string `yaml:"combine"`
	Title   string `yaml:"title"`
}

// ApplyPromptOverrides merges templates from a YAML file into settings.
// A missing file is not an error; empty fields keep the current template.
func ApplyPromptOverrides(s domain.Settings, path string) (domain.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, err
	}

	var p promptFile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return s, err
	}

	if p.Summary != "" {
		s.SummaryPrompt = p.Summary
	}
	if p.Chunk != "" {
		s.ChunkPrompt = p.Chunk
	}
	if p.Combine != "" {
		s.CombinePrompt = p.Combine
	}
	if p.Title != "" {
		s.TitlePrompt = p.Title
	}
	return s, nil
}

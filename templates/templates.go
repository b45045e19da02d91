// Package templates serves the artifact templates the editor offers when a
// founder adds a section to their pitch document.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// ErrTemplateNotFound is returned by Get for an unknown id.
var ErrTemplateNotFound = errors.New("template not found")

// PromptGroup is a heading with the questions that guide writing under it.
type PromptGroup struct {
	Heading   string   `yaml:"heading" json:"heading"`
	Questions []string `yaml:"questions" json:"questions"`
}

// Template describes one artifact section.
// DefaultContent is nil for sections that start blank.
type Template struct {
	ID             string        `yaml:"id" json:"id"`
	Title          string        `yaml:"title" json:"title"`
	Icon           string        `yaml:"icon" json:"icon"`
	Description    string        `yaml:"description" json:"description"`
	Prompts        []PromptGroup `yaml:"prompts" json:"prompts"`
	DefaultContent *string       `yaml:"default_content" json:"defaultContent"`
}

var (
	loadOnce  sync.Once
	templates []Template
	loadErr   error
)

func load() ([]Template, error) {
	loadOnce.Do(func() {
		var ts []Template
		if err := yaml.Unmarshal(templatesYAML, &ts); err != nil {
			loadErr = fmt.Errorf("failed to parse templates: %w", err)
			return
		}
		for i := range ts {
			if ts[i].Prompts == nil {
				ts[i].Prompts = []PromptGroup{}
			}
		}
		templates = ts
	})
	return templates, loadErr
}

// All returns every template in display order.
func All() ([]Template, error) {
	ts, err := load()
	if err != nil {
		return nil, err
	}
	out := make([]Template, len(ts))
	copy(out, ts)
	return out, nil
}

// Get returns the template with the given id.
func Get(id string) (Template, error) {
	ts, err := load()
	if err != nil {
		return Template{}, err
	}
	for _, t := range ts {
		if t.ID == id {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

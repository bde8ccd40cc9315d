// Package prompts holds the LLM prompt templates for the generation
// stages, embedded at compile time and keyed by stage name
// (topic_generation, content_planning, writing, editing, seo_optimization).
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed blog.json
var files embed.FS

var (
	loadOnce sync.Once
	stages   map[string]string
	loadErr  error
)

func load() (map[string]string, error) {
	loadOnce.Do(func() {
		data, err := files.ReadFile("blog.json")
		if err != nil {
			loadErr = fmt.Errorf("failed to read embedded prompts: %w", err)
			return
		}
		if err := json.Unmarshal(data, &stages); err != nil {
			loadErr = fmt.Errorf("failed to parse embedded prompts: %w", err)
		}
	})
	return stages, loadErr
}

// Get returns the prompt template for one generation stage.
func Get(stage string) (string, error) {
	m, err := load()
	if err != nil {
		return "", err
	}
	template, ok := m[stage]
	if !ok {
		return "", fmt.Errorf("no prompt for stage %q", stage)
	}
	return template, nil
}

// Format substitutes {{.Key}} placeholders with values from data. Keys
// absent from data leave their placeholders in place.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(data))
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Stages lists the stage names carried in the embedded prompt set.
func Stages() ([]string, error) {
	m, err := load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names, nil
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptPair holds a system and user prompt template.
type PromptPair struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// RecipePrompts holds the recipe prompt templates.
type RecipePrompts struct {
	Generate PromptPair `yaml:"generate"`
	Extract  PromptPair `yaml:"extract"`
}

// ImagePrompts holds the image generation prompt templates.
type ImagePrompts struct {
	Generate string `yaml:"generate"`
}

// Prompts is the top-level prompt configuration loaded from YAML.
type Prompts struct {
	Recipe RecipePrompts `yaml:"recipe"`
	Image  ImagePrompts  `yaml:"image"`
}

// LoadPrompts reads and parses a YAML prompt configuration file.
func LoadPrompts(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}
	return ParsePrompts(data)
}

// ParsePrompts parses YAML prompt configuration.
func ParsePrompts(data []byte) (*Prompts, error) {
	var prompts Prompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompts YAML: %w", err)
	}
	if prompts.Recipe.Generate.System == "" || prompts.Recipe.Extract.System == "" {
		return nil, fmt.Errorf("prompts YAML is missing recipe system prompts")
	}
	return &prompts, nil
}

// RenderPrompt executes Go template interpolation on a prompt string.
// The data map provides values for placeholders like {{.Prompt}} and {{.Text}}.
func RenderPrompt(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("prompt").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

package agents

import (
	"fmt"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

// agentFile is the on-disk shape of a custom agent definitions file.
type agentFile struct {
	Agents []agentConfig `yaml:"agents"`
}

// agentConfig defines one custom agent family in YAML.
type agentConfig struct {
	ID            string   `yaml:"id"`
	DisplayName   string   `yaml:"display_name"`
	Command       string   `yaml:"command"`
	BatchArgs     []string `yaml:"batch_args"`
	OutputArgs    []string `yaml:"output_args"`
	ReadOnlyArgs  []string `yaml:"read_only_args"`
	ResumeStyle   string   `yaml:"resume_style"`
	ResumeToken   string   `yaml:"resume_token"`
	ErrorPatterns []struct {
		Kind    string `yaml:"kind"`
		Pattern string `yaml:"pattern"`
	} `yaml:"error_patterns"`
}

// LoadYAML registers custom agent profiles from a YAML definitions file.
// A missing file is not an error; Maestro runs fine with builtins only.
func (r *Registry) LoadYAML(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read agent definitions: %w", err)
	}

	var file agentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse agent definitions: %w", err)
	}

	for _, ac := range file.Agents {
		p, err := profileFromConfig(ac)
		if err != nil {
			return fmt.Errorf("agent %q: %w", ac.ID, err)
		}
		r.Register(p)
	}
	return nil
}

func profileFromConfig(ac agentConfig) (*Profile, error) {
	if ac.ID == "" || ac.Command == "" {
		return nil, fmt.Errorf("id and command are required")
	}

	style := ResumeStyle(ac.ResumeStyle)
	switch style {
	case "", ResumeNone:
		style = ResumeNone
	case ResumeFlag, ResumeSubcommand:
		if ac.ResumeToken == "" {
			return nil, fmt.Errorf("resume_token required for resume_style %q", style)
		}
	default:
		return nil, fmt.Errorf("unknown resume_style %q", ac.ResumeStyle)
	}

	p := &Profile{
		ID:           ac.ID,
		DisplayName:  ac.DisplayName,
		Command:      ac.Command,
		BatchArgs:    ac.BatchArgs,
		OutputArgs:   ac.OutputArgs,
		ReadOnlyArgs: ac.ReadOnlyArgs,
		ResumeStyle:  style,
		ResumeToken:  ac.ResumeToken,
	}
	if p.DisplayName == "" {
		p.DisplayName = p.ID
	}

	for _, ep := range ac.ErrorPatterns {
		re, err := regexp.Compile(ep.Pattern)
		if err != nil {
			return nil, fmt.Errorf("error pattern %q: %w", ep.Pattern, err)
		}
		p.ErrorPatterns = append(p.ErrorPatterns, ErrorPattern{
			Kind:    ErrorKind(ep.Kind),
			Pattern: re,
		})
	}
	return p, nil
}

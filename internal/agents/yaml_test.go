package agents

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	content := `agents:
  - id: aider
    display_name: Aider
    command: aider
    batch_args: ["--message"]
    output_args: ["--no-pretty"]
    resume_style: flag
    resume_token: "--restore-chat-history"
    error_patterns:
      - kind: session_not_found
        pattern: "(?i)chat history not found"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write agents file: %v", err)
	}

	reg := NewRegistry()
	if err := reg.LoadYAML(path); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	p, ok := reg.Get("aider")
	if !ok {
		t.Fatal("aider profile not registered")
	}
	if p.DisplayName != "Aider" {
		t.Errorf("DisplayName = %q, want %q", p.DisplayName, "Aider")
	}
	if !p.SupportsResume() {
		t.Error("aider should support resume")
	}
	if got := p.BuildResumeArgs("s1"); !reflect.DeepEqual(got, []string{"--restore-chat-history", "s1"}) {
		t.Errorf("BuildResumeArgs = %v", got)
	}
	if got := p.ClassifyLine("Chat history not found for session"); got != ErrKindSessionNotFound {
		t.Errorf("ClassifyLine = %q, want session_not_found", got)
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	reg := NewRegistry()
	if err := reg.LoadYAML(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}

func TestLoadYAMLValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "missing command",
			content: "agents:\n  - id: broken\n",
		},
		{
			name:    "resume style without token",
			content: "agents:\n  - id: broken\n    command: broken\n    resume_style: flag\n",
		},
		{
			name:    "unknown resume style",
			content: "agents:\n  - id: broken\n    command: broken\n    resume_style: telepathy\n",
		},
		{
			name:    "bad error pattern",
			content: "agents:\n  - id: broken\n    command: broken\n    error_patterns:\n      - kind: auth\n        pattern: \"([\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "agents.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write agents file: %v", err)
			}
			reg := NewRegistry()
			if err := reg.LoadYAML(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

package agents

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildResumeArgs(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name     string
		agentID  string
		session  string
		expected []string
	}{
		{
			name:     "claude-code uses flag style",
			agentID:  "claude-code",
			session:  "sess-123",
			expected: []string{"--resume", "sess-123"},
		},
		{
			name:     "codex uses subcommand style",
			agentID:  "codex",
			session:  "sess-456",
			expected: []string{"resume", "sess-456"},
		},
		{
			name:     "gemini has no resume",
			agentID:  "gemini",
			session:  "sess-789",
			expected: nil,
		},
		{
			name:     "empty session id builds nothing",
			agentID:  "claude-code",
			session:  "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := reg.Get(tt.agentID)
			if !ok {
				t.Fatalf("profile %q not registered", tt.agentID)
			}
			got := p.BuildResumeArgs(tt.session)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("BuildResumeArgs(%q) = %v, want %v", tt.session, got, tt.expected)
			}
		})
	}
}

func TestSupportsResume(t *testing.T) {
	reg := NewRegistry()
	for id, want := range map[string]bool{
		"claude-code": true,
		"codex":       true,
		"gemini":      false,
	} {
		p, ok := reg.Get(id)
		if !ok {
			t.Fatalf("profile %q not registered", id)
		}
		if p.SupportsResume() != want {
			t.Errorf("%s SupportsResume() = %v, want %v", id, p.SupportsResume(), want)
		}
	}
}

func TestDetect(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		token    string
		expected string
	}{
		{"claude-code", "claude-code"},
		{"Claude-Code", "claude-code"},
		{"codex", "codex"},
		{"Codex", "codex"},
		{"Gemini", "gemini"},
		{"unknown-agent", ""},
		{"claude-Code", ""},
	}

	for _, tt := range tests {
		p := reg.Detect(tt.token)
		got := ""
		if p != nil {
			got = p.ID
		}
		if got != tt.expected {
			t.Errorf("Detect(%q) = %q, want %q", tt.token, got, tt.expected)
		}
	}
}

func TestAvailable(t *testing.T) {
	reg := NewRegistry()
	reg.SetLookPath(func(file string) (string, error) {
		if file == "claude" {
			return "/usr/local/bin/claude", nil
		}
		return "", errors.New("not found")
	})

	if !reg.Available("claude-code") {
		t.Error("claude-code should be available")
	}
	if reg.Available("codex") {
		t.Error("codex should not be available")
	}
	if reg.Available("no-such-agent") {
		t.Error("unknown agent should not be available")
	}
}

func TestClassifyLine(t *testing.T) {
	reg := NewRegistry()
	p, _ := reg.Get("claude-code")

	tests := []struct {
		line     string
		expected ErrorKind
	}{
		{"Error: No conversation found with session ID sess-1", ErrKindSessionNotFound},
		{"rate limit exceeded, retry later", ErrKindRateLimit},
		{"Invalid API key provided", ErrKindAuth},
		{"perfectly normal output", ""},
	}

	for _, tt := range tests {
		if got := p.ClassifyLine(tt.line); got != tt.expected {
			t.Errorf("ClassifyLine(%q) = %q, want %q", tt.line, got, tt.expected)
		}
	}
}

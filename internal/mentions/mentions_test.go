package mentions

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	participants := []string{"Alice", "bob-agent", "Claude Code", "研究者"}

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single known mention",
			text:     "please ask @Alice about this",
			expected: []string{"Alice"},
		},
		{
			name:     "unknown mentions ignored",
			text:     "@Alice check with @nobody and @Alice2",
			expected: []string{"Alice"},
		},
		{
			name:     "duplicates dropped first seen order kept",
			text:     "@bob-agent then @Alice then @bob-agent again",
			expected: []string{"bob-agent", "Alice"},
		},
		{
			name:     "case sensitive",
			text:     "@alice and @ALICE are not @Alice",
			expected: nil,
		},
		{
			name:     "unicode names",
			text:     "@研究者 please investigate",
			expected: []string{"研究者"},
		},
		{
			name:     "no mentions",
			text:     "nothing to see here",
			expected: nil,
		},
		{
			name:     "email-like text still tokenizes",
			text:     "contact me, not user@example",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text, participants)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Extract(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("@claude-code and @Codex, plus @claude-code once more")
	want := []string{"claude-code", "Codex"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestMatchesName(t *testing.T) {
	tests := []struct {
		token    string
		name     string
		expected bool
	}{
		{"Claude-Code", "Claude Code", true},
		{"Claude Code", "Claude Code", true},
		{"claude-code", "Claude Code", false},
		{"Alice", "Alice", true},
		{"alice", "Alice", false},
	}

	for _, tt := range tests {
		if got := MatchesName(tt.token, tt.name); got != tt.expected {
			t.Errorf("MatchesName(%q, %q) = %v, want %v", tt.token, tt.name, got, tt.expected)
		}
	}
}

func TestHyphenate(t *testing.T) {
	if got := Hyphenate("Claude Code Max"); got != "Claude-Code-Max" {
		t.Errorf("Hyphenate() = %q, want %q", got, "Claude-Code-Max")
	}
}

package agents

import (
	"os/exec"
	"regexp"
	"sync"

	"github.com/pedramamini/Maestro-sub005/internal/mentions"
)

// Registry holds the known agent profiles and answers availability and
// mention-detection queries.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	order    []string

	// lookPath is swappable in tests to fake binary availability.
	lookPath func(file string) (string, error)
}

// NewRegistry creates a registry pre-populated with the builtin profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: make(map[string]*Profile),
		lookPath: exec.LookPath,
	}
	for _, p := range builtinProfiles() {
		r.Register(p)
	}
	return r
}

// builtinProfiles returns the agent families Maestro knows out of the box.
// Note the deliberately different resume shapes: claude-code takes a
// "--resume <id>" flag pair while codex takes a bare "resume <id>"
// subcommand pair. gemini has no resume support at all.
func builtinProfiles() []*Profile {
	return []*Profile{
		{
			ID:           "claude-code",
			DisplayName:  "Claude Code",
			Command:      "claude",
			BatchArgs:    []string{"--print", "--verbose"},
			OutputArgs:   []string{"--output-format", "stream-json"},
			ReadOnlyArgs: []string{"--permission-mode", "plan"},
			ResumeStyle:  ResumeFlag,
			ResumeToken:  "--resume",
			ErrorPatterns: []ErrorPattern{
				{Kind: ErrKindSessionNotFound, Pattern: regexp.MustCompile(`(?i)no conversation found with session id`)},
				{Kind: ErrKindRateLimit, Pattern: regexp.MustCompile(`(?i)rate limit`)},
				{Kind: ErrKindAuth, Pattern: regexp.MustCompile(`(?i)(invalid api key|not logged in)`)},
			},
		},
		{
			ID:           "codex",
			DisplayName:  "Codex",
			Command:      "codex",
			BatchArgs:    []string{"exec"},
			OutputArgs:   []string{"--json"},
			ReadOnlyArgs: []string{"--sandbox", "read-only"},
			ResumeStyle:  ResumeSubcommand,
			ResumeToken:  "resume",
			ErrorPatterns: []ErrorPattern{
				{Kind: ErrKindSessionNotFound, Pattern: regexp.MustCompile(`(?i)session was not found`)},
				{Kind: ErrKindRateLimit, Pattern: regexp.MustCompile(`(?i)rate limit`)},
			},
		},
		{
			ID:          "gemini",
			DisplayName: "Gemini",
			Command:     "gemini",
			BatchArgs:   []string{"--prompt"},
			OutputArgs:  []string{"--output-format", "json"},
			ResumeStyle: ResumeNone,
			ErrorPatterns: []ErrorPattern{
				{Kind: ErrKindRateLimit, Pattern: regexp.MustCompile(`(?i)quota exceeded`)},
			},
		},
	}
}

// Register adds or replaces a profile.
func (r *Registry) Register(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.profiles[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	}
	r.profiles[p.ID] = p
}

// Get returns the profile for an agent id.
func (r *Registry) Get(id string) (*Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	return p, ok
}

// All returns the registered profiles in registration order.
func (r *Registry) All() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Profile, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.profiles[id])
	}
	return out
}

// Detect resolves a mention token to a profile: either the agent type id
// itself (@claude-code) or the hyphen-for-space form of the display name
// (@Claude-Code for "Claude Code"). Returns nil when no profile matches.
func (r *Registry) Detect(token string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		p := r.profiles[id]
		if token == p.ID || mentions.MatchesName(token, p.DisplayName) {
			return p
		}
	}
	return nil
}

// Available reports whether the agent's binary is installed on this host.
func (r *Registry) Available(id string) bool {
	r.mu.RLock()
	p, ok := r.profiles[id]
	look := r.lookPath
	r.mu.RUnlock()
	if !ok {
		return false
	}
	_, err := look(p.Command)
	return err == nil
}

// SetLookPath overrides binary lookup, used by tests.
func (r *Registry) SetLookPath(fn func(string) (string, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookPath = fn
}

// Package agents describes the command-line agent families Maestro can
// drive and the capability profile each one exposes.
//
// Orchestration code never branches on an agent id by name; it branches
// only on capability presence and treats the resume-argument builder as an
// opaque function of the stored agent-session id.
package agents

import "regexp"

// ResumeStyle selects the argument shape an agent family uses to resume an
// existing session.
type ResumeStyle string

const (
	// ResumeNone means the agent cannot resume; every turn is a fresh session.
	ResumeNone ResumeStyle = "none"
	// ResumeFlag passes the session id as a --flag value pair.
	ResumeFlag ResumeStyle = "flag"
	// ResumeSubcommand passes a bare "subcommand value" pair with no dashes.
	ResumeSubcommand ResumeStyle = "subcommand"
)

// ErrorKind classifies a line of raw agent output.
type ErrorKind string

const (
	ErrKindSessionNotFound ErrorKind = "session_not_found"
	ErrKindRateLimit       ErrorKind = "rate_limit"
	ErrKindAuth            ErrorKind = "auth"
)

// ErrorPattern pairs a classification with the regexp that detects it in a
// single output line.
type ErrorPattern struct {
	Kind    ErrorKind
	Pattern *regexp.Regexp
}

// Profile is the capability descriptor for one agent family. It drives all
// protocol branching in prompt construction and subprocess argument building.
type Profile struct {
	// ID is the agent type identifier, e.g. "claude-code".
	ID string
	// DisplayName is the human-readable name, e.g. "Claude Code".
	DisplayName string
	// Command is the binary invoked to run the agent.
	Command string
	// BatchArgs put the agent into one-shot batch mode (never a long-lived
	// interactive session).
	BatchArgs []string
	// OutputArgs request machine-readable JSON output.
	OutputArgs []string
	// ReadOnlyArgs restrict the agent from modifying files.
	ReadOnlyArgs []string

	// ResumeStyle and ResumeToken together define the resume argument shape.
	// Callers use BuildResumeArgs and never interpret these directly.
	ResumeStyle ResumeStyle
	ResumeToken string

	// ErrorPatterns classify structured errors in this agent's raw output.
	ErrorPatterns []ErrorPattern
}

// SupportsResume reports whether the agent can resume a prior session.
func (p *Profile) SupportsResume() bool {
	return p.ResumeStyle != ResumeNone && p.ResumeStyle != "" && p.ResumeToken != ""
}

// BuildResumeArgs returns the subprocess arguments that resume the given
// agent session. Returns nil when the agent lacks resume support or the
// session id is empty.
func (p *Profile) BuildResumeArgs(sessionID string) []string {
	if sessionID == "" || !p.SupportsResume() {
		return nil
	}
	switch p.ResumeStyle {
	case ResumeFlag, ResumeSubcommand:
		return []string{p.ResumeToken, sessionID}
	default:
		return nil
	}
}

// ClassifyLine runs the profile's structured error patterns against one
// output line. Returns the empty kind when no pattern matches.
func (p *Profile) ClassifyLine(line string) ErrorKind {
	for _, ep := range p.ErrorPatterns {
		if ep.Pattern.MatchString(line) {
			return ep.Kind
		}
	}
	return ""
}

// Package proc defines the process-manager contract the orchestrator spawns
// agents through, plus a real exec-based implementation, at-exit output
// buffering, and remote-execution wrapping.
package proc

// SpawnConfig describes one agent subprocess invocation.
type SpawnConfig struct {
	// SessionID is the routing tag used to demultiplex output. It is
	// internal to Maestro and unrelated to the agent's own session id.
	SessionID string
	// Command and Args form the subprocess invocation. The argument grammar
	// comes entirely from the agent's capability profile; the orchestrator
	// never assumes a particular shape.
	Command string
	Args    []string
	// Prompt is delivered to the agent as the final argument.
	Prompt string
	// WorkDir is the subprocess working directory.
	WorkDir string
	// ReadOnlyMode mirrors the routing read-only flag.
	ReadOnlyMode bool
	// AgentSessionID carries the external session being resumed, when set.
	AgentSessionID string

	// Remote execution fields, populated by WrapRemote.
	SSHHost     string
	SSHUser     string
	SSHIdentity string
	RemoteName  string
}

// SpawnResult reports the outcome of starting a subprocess.
type SpawnResult struct {
	PID     int
	Success bool
}

// Manager is the process-manager collaborator. Implementations must buffer
// streaming output per routing session id and deliver it exactly once, at
// process exit, via the exit handler.
type Manager interface {
	// Spawn starts a one-shot batch subprocess.
	Spawn(cfg SpawnConfig) (SpawnResult, error)
	// Write sends data to a live subprocess's stdin. Returns false when the
	// session is unknown or already exited.
	Write(sessionID, data string) bool
	// Kill terminates a live subprocess. Returns false when the session is
	// unknown or already exited.
	Kill(sessionID string) bool
}

// ExitHandler receives a finished subprocess's routing session id, its full
// buffered output, and the exit code.
type ExitHandler func(sessionID, output string, exitCode int)

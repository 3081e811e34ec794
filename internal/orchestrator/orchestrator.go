// Package orchestrator coordinates a group chat of one moderator agent and
// N participant agents cooperating on a shared task through a persisted
// message log. It routes messages by @mention, abstracts per-agent resume
// protocols, enforces per-chat mutual exclusion, and fires a moderator
// synthesis round once every delegated participant has answered.
package orchestrator

import (
	"errors"
	"sync"
	"time"

	"github.com/pedramamini/Maestro-sub005/internal/agents"
	"github.com/pedramamini/Maestro-sub005/internal/proc"
	"github.com/pedramamini/Maestro-sub005/internal/store"
)

// Sentinel errors for routing failures. Store-level not-found conditions
// surface as store.ErrChatNotFound and friends.
var (
	// ErrModeratorNotActive is returned when a user message is routed before
	// a moderator exists for the chat.
	ErrModeratorNotActive = errors.New("moderator not active")
	// ErrLockContention is returned when the chat lock is held by another
	// live operation. Callers treat it as "skip this operation".
	ErrLockContention = errors.New("chat is locked by another operation")
)

// ExternalSession describes a session already known to the host environment,
// usable for mention-based auto-discovery of participants.
type ExternalSession struct {
	// ID is the host's identifier for the session.
	ID string
	// Name is the session's display name, matched against mentions.
	Name string
	// AgentID is the agent type running in the session.
	AgentID string
	// WorkDir is the session's working directory, carried into spawns.
	WorkDir string
	// Remote, when set, wraps spawns for remote execution.
	Remote *proc.RemoteConfig
}

// SessionLookup returns the host's currently known external sessions.
type SessionLookup func() []ExternalSession

// RemoteWrapper transforms a spawn config for remote execution.
type RemoteWrapper func(proc.SpawnConfig, proc.RemoteConfig) proc.SpawnConfig

// spawnRole identifies what a tracked subprocess is doing.
type spawnRole int

const (
	roleModerator spawnRole = iota
	roleParticipant
	roleSynthesis
)

// spawnRef tracks one in-flight subprocess so its exit event can be
// demultiplexed back to the right chat and routing path.
type spawnRef struct {
	ChatID      string
	Role        spawnRole
	Participant string
	AgentID     string
	Manager     proc.Manager
	ReadOnly    bool
	// Instruction is the new-turn instruction, retained so a session-loss
	// failure can be retried once on the full-prompt path.
	Instruction string
	Retried     bool
}

// Orchestrator owns the mutable routing state for all chats in this
// process: chat locks, the synthesis guard, the completion barrier, and the
// in-flight spawn index. Construct a fresh instance per test for empty maps.
type Orchestrator struct {
	store   *store.Store
	agents  *agents.Registry
	locks   *LockManager
	barrier *Barrier
	parser  proc.OutputParser
	logger  *DebugLogger
	events  chan Event

	externalSessions SessionLookup
	wrapRemote       RemoteWrapper
	defaultWorkDir   string
	recoveryMessages int

	// exitMu serializes process-exit handling. Exit events arrive on
	// per-process goroutines, so without it two participants finishing
	// together would contend for the chat lock and one response would be
	// dropped with its spawnRef already consumed.
	exitMu sync.Mutex
	// lockRetryDelay is how long the exit path waits between chat-lock
	// attempts. Swappable so tests do not sleep for real intervals.
	lockRetryDelay time.Duration

	mu       sync.Mutex
	inflight map[string]spawnRef
}

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithParser sets the output parser for finished agent turns.
func WithParser(p proc.OutputParser) Option {
	return func(o *Orchestrator) { o.parser = p }
}

// WithExternalSessions sets the host session lookup used for mention-based
// auto-discovery.
func WithExternalSessions(fn SessionLookup) Option {
	return func(o *Orchestrator) { o.externalSessions = fn }
}

// WithRemoteWrapper sets the remote-execution wrapper applied to targets
// that carry remote configuration.
func WithRemoteWrapper(fn RemoteWrapper) Option {
	return func(o *Orchestrator) { o.wrapRemote = fn }
}

// WithDefaultWorkDir sets the working directory for participants spawned
// fresh from an agent type mention.
func WithDefaultWorkDir(dir string) Option {
	return func(o *Orchestrator) { o.defaultWorkDir = dir }
}

// WithRecoveryMessages sets how many trailing log entries a recovery
// context includes.
func WithRecoveryMessages(n int) Option {
	return func(o *Orchestrator) { o.recoveryMessages = n }
}

// New creates an Orchestrator with empty lock, guard, and barrier state.
func New(st *store.Store, registry *agents.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:            st,
		agents:           registry,
		locks:            NewLockManager(),
		barrier:          NewBarrier(),
		parser:           proc.StreamJSONParser{},
		logger:           NopLogger(),
		events:           make(chan Event, 64),
		wrapRemote:       proc.WrapRemote,
		recoveryMessages: DefaultRecoveryMessages,
		lockRetryDelay:   50 * time.Millisecond,
		inflight:         make(map[string]spawnRef),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Locks exposes the lock manager, used by surrounding CLI commands for
// inspection and force-release.
func (o *Orchestrator) Locks() *LockManager {
	return o.locks
}

// PendingParticipants returns the names still owed for the chat's current
// delegation round.
func (o *Orchestrator) PendingParticipants(chatID string) []string {
	return o.barrier.Pending(chatID)
}

// InFlight reports how many spawned subprocesses have not yet exited.
// The CLI uses it to wait for a routed round to drain.
func (o *Orchestrator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inflight)
}

// trackSpawn records an in-flight subprocess under its routing session id.
func (o *Orchestrator) trackSpawn(sessionID string, ref spawnRef) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inflight[sessionID] = ref
}

// takeSpawn removes and returns the tracked subprocess for a session id.
func (o *Orchestrator) takeSpawn(sessionID string) (spawnRef, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ref, ok := o.inflight[sessionID]
	if ok {
		delete(o.inflight, sessionID)
	}
	return ref, ok
}

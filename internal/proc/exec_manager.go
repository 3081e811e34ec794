package proc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// ExecManager is the real Manager backed by os/exec. Stdout and stderr are
// streamed into an OutputBuffer; the configured ExitHandler fires once per
// process, at exit, with the consumed buffer contents.
type ExecManager struct {
	ctx    context.Context
	buffer *OutputBuffer
	onExit ExitHandler

	mu    sync.Mutex
	procs map[string]*managedProc
}

type managedProc struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// NewExecManager creates an ExecManager. onExit may be nil, in which case
// buffered output stays available for manual Consume.
func NewExecManager(ctx context.Context, onExit ExitHandler) *ExecManager {
	return &ExecManager{
		ctx:    ctx,
		buffer: NewOutputBuffer(),
		onExit: onExit,
		procs:  make(map[string]*managedProc),
	}
}

// Buffer exposes the manager's output buffer.
func (m *ExecManager) Buffer() *OutputBuffer {
	return m.buffer
}

// Spawn starts the configured subprocess and begins streaming its output
// into the buffer under cfg.SessionID.
func (m *ExecManager) Spawn(cfg SpawnConfig) (SpawnResult, error) {
	args := append([]string(nil), cfg.Args...)
	if cfg.Prompt != "" {
		args = append(args, cfg.Prompt)
	}

	cmd := exec.CommandContext(m.ctx, cfg.Command, args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return SpawnResult{}, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return SpawnResult{}, fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return SpawnResult{}, fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return SpawnResult{}, fmt.Errorf("start %s: %w", cfg.Command, err)
	}

	m.mu.Lock()
	m.procs[cfg.SessionID] = &managedProc{cmd: cmd, stdin: stdin}
	m.mu.Unlock()

	var readers sync.WaitGroup
	readers.Add(2)
	go m.stream(cfg.SessionID, stdout, &readers)
	go m.stream(cfg.SessionID, stderr, &readers)

	go func() {
		readers.Wait()
		err := cmd.Wait()

		m.mu.Lock()
		delete(m.procs, cfg.SessionID)
		m.mu.Unlock()

		if m.onExit != nil {
			code := 0
			if err != nil {
				code = 1
				if exitErr, ok := err.(*exec.ExitError); ok {
					code = exitErr.ExitCode()
				}
			}
			m.onExit(cfg.SessionID, m.buffer.Consume(cfg.SessionID), code)
		}
	}()

	return SpawnResult{PID: cmd.Process.Pid, Success: true}, nil
}

// stream appends lines from r to the session's output buffer.
func (m *ExecManager) stream(sessionID string, r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		m.buffer.Append(sessionID, scanner.Text()+"\n")
	}
}

// Write sends data to a live subprocess's stdin.
func (m *ExecManager) Write(sessionID, data string) bool {
	m.mu.Lock()
	p, ok := m.procs[sessionID]
	m.mu.Unlock()
	if !ok {
		return false
	}
	_, err := io.WriteString(p.stdin, data)
	return err == nil
}

// Kill terminates a live subprocess.
func (m *ExecManager) Kill(sessionID string) bool {
	m.mu.Lock()
	p, ok := m.procs[sessionID]
	m.mu.Unlock()
	if !ok || p.cmd.Process == nil {
		return false
	}
	return p.cmd.Process.Kill() == nil
}

// Verify ExecManager implements Manager at compile time.
var _ Manager = (*ExecManager)(nil)

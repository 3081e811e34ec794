package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pedramamini/Maestro-sub005/internal/orchestrator"
	"github.com/pedramamini/Maestro-sub005/internal/proc"
	"github.com/spf13/cobra"
)

var (
	sendReadOnly bool
	sendLogOnly  bool
	sendWorkDir  string
	sendTimeout  time.Duration
	sendQuiet    bool
)

var sendCmd = &cobra.Command{
	Use:   "send <chat-id> <message...>",
	Short: "Send a message to a chat's moderator",
	Long: `Send a user message into a group chat.

The message is appended to the chat log and the moderator agent is spawned
to respond. When the moderator delegates via @mentions, the mentioned
participants run in parallel and the moderator synthesizes their responses
once all of them have finished. The command blocks until the round drains.

With --log-only the message is only appended to the log; no agent runs.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	chatID := args[0]
	text := strings.Join(args[1:], " ")
	readOnly := sendReadOnly || rt.cfg.Defaults.ReadOnly

	workDir := sendWorkDir
	if workDir == "" {
		workDir = rt.cfg.Defaults.WorkDir
	}
	if workDir == "" {
		workDir, _ = os.Getwd()
	}

	logger := orchestrator.NewDebugLoggerForDir(rt.cfg.Paths.DataDir)
	defer logger.Close()

	orch := orchestrator.New(rt.store, rt.agents,
		orchestrator.WithLogger(logger),
		orchestrator.WithDefaultWorkDir(workDir),
		orchestrator.WithRecoveryMessages(rt.cfg.Recovery.ContextMessages),
	)

	if sendLogOnly {
		if err := orch.RouteUserMessage(chatID, text, nil, readOnly); err != nil {
			return err
		}
		fmt.Println("Message logged.")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	pm := proc.NewExecManager(ctx, orch.HandleProcessExit)

	done := make(chan struct{})
	go printEvents(orch.Events(), done)

	if err := orch.RouteUserMessage(chatID, text, pm, readOnly); err != nil {
		close(done)
		return err
	}

	err = waitForRound(ctx, orch)
	close(done)
	if err != nil {
		return err
	}

	// Print the tail of the round: everything logged after the user message.
	entries, readErr := rt.store.ReadLog(chatID)
	if readErr != nil {
		return fmt.Errorf("read chat log: %w", readErr)
	}
	start := len(entries)
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Content == text {
			start = i + 1
			break
		}
	}
	fmt.Println()
	for _, e := range entries[start:] {
		printLogEntry(e)
	}
	return nil
}

// waitForRound blocks until no subprocess has been in flight for several
// consecutive polls. The settle window covers the gap between one process
// exiting and its routed follow-up spawns being tracked.
func waitForRound(ctx context.Context, orch *orchestrator.Orchestrator) error {
	const settlePolls = 5
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	idle := 0
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("round did not finish: %w", ctx.Err())
		case <-ticker.C:
			if orch.InFlight() == 0 {
				idle++
				if idle >= settlePolls {
					return nil
				}
			} else {
				idle = 0
			}
		}
	}
}

var eventColor = color.New(color.FgMagenta)

// printEvents streams orchestrator events to stderr until done closes.
func printEvents(events <-chan orchestrator.Event, done <-chan struct{}) {
	if sendQuiet {
		<-done
		return
	}
	for {
		select {
		case <-done:
			return
		case ev := <-events:
			subject := ev.Participant
			if subject == "" {
				subject = ev.AgentID
			}
			fmt.Fprintln(os.Stderr, eventColor.Sprintf("· %s %s", ev.Type, subject))
		}
	}
}

func init() {
	sendCmd.Flags().BoolVar(&sendReadOnly, "read-only", false, "Route in read-only mode (agents must not modify files)")
	sendCmd.Flags().BoolVar(&sendLogOnly, "log-only", false, "Append to the log without spawning the moderator")
	sendCmd.Flags().StringVar(&sendWorkDir, "workdir", "", "Working directory for newly spawned agent types")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 30*time.Minute, "Maximum time to wait for the round")
	sendCmd.Flags().BoolVarP(&sendQuiet, "quiet", "q", false, "Suppress event output")
}

package main

import (
	"fmt"
	"os"

	"github.com/pedramamini/Maestro-sub005/internal/agents"
	"github.com/pedramamini/Maestro-sub005/internal/config"
	"github.com/pedramamini/Maestro-sub005/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "maestro",
	Short: "Group chat orchestrator for CLI agents",
	Long: `Maestro coordinates group chats where a moderator agent delegates work
to participant agents through @mentions. Every message is persisted to a
chat log; agents run as one-shot batch subprocesses and resume their own
sessions between turns.

Core capabilities:
- Routes user messages to a moderator agent
- Fans moderator @mentions out to participant agents in parallel
- Synthesizes a final answer once every participant has responded
- Recovers lost agent sessions with rebuilt conversation context`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(participantCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// runtime bundles the loaded config, the chat store, and the agent registry
// that most commands need.
type runtime struct {
	cfg    *config.Config
	store  *store.Store
	agents *agents.Registry
}

// newRuntime loads configuration and opens the chat store. Custom agent
// definitions are loaded when the configured file exists.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	st, err := store.New(cfg.Paths.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open chat store: %w", err)
	}

	reg := agents.NewRegistry()
	if err := reg.LoadYAML(cfg.Paths.AgentsFile); err != nil {
		return nil, fmt.Errorf("load agent definitions: %w", err)
	}

	return &runtime{cfg: cfg, store: st, agents: reg}, nil
}

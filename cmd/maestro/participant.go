package main

import (
	"fmt"

	"github.com/pedramamini/Maestro-sub005/pkg/models"
	"github.com/spf13/cobra"
)

var (
	participantAgent   string
	participantWorkDir string
)

var participantCmd = &cobra.Command{
	Use:   "participant",
	Short: "Manage chat participants",
}

var participantAddCmd = &cobra.Command{
	Use:   "add <chat-id> <name>",
	Short: "Add a participant to a chat",
	Long: `Add a named participant backed by an agent type.

The participant gets a fresh routing session id scoped to the chat. Its
agent session starts empty and is captured after its first turn.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		agentID := participantAgent
		if _, ok := rt.agents.Get(agentID); !ok {
			return fmt.Errorf("unknown agent type %q (see 'maestro agents')", agentID)
		}

		if err := rt.store.AddParticipant(args[0], models.Participant{
			Name:    args[1],
			AgentID: agentID,
			WorkDir: participantWorkDir,
		}); err != nil {
			return fmt.Errorf("add participant: %w", err)
		}
		fmt.Printf("Added %s (%s) to chat %s.\n", args[1], agentID, args[0])
		return nil
	},
}

var participantRemoveCmd = &cobra.Command{
	Use:   "remove <chat-id> <name>",
	Short: "Remove a participant from a chat",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		if err := rt.store.RemoveParticipant(args[0], args[1]); err != nil {
			return fmt.Errorf("remove participant: %w", err)
		}
		fmt.Printf("Removed %s from chat %s.\n", args[1], args[0])
		return nil
	},
}

func init() {
	participantAddCmd.Flags().StringVar(&participantAgent, "agent", "claude-code", "Agent type backing the participant")
	participantAddCmd.Flags().StringVar(&participantWorkDir, "workdir", "", "Working directory for the participant's agent")
	participantCmd.AddCommand(participantAddCmd)
	participantCmd.AddCommand(participantRemoveCmd)
}

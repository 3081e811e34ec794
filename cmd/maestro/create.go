package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var createModerator string

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new group chat",
	Long: `Create a persisted group chat with a moderator agent.

The moderator agent type defaults to the configured defaults.moderator_agent
and can be overridden with --moderator. Participants are added later, either
explicitly via 'maestro participant add' or automatically when the moderator
@mentions a known agent type or session.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		moderator := createModerator
		if moderator == "" {
			moderator = rt.cfg.Defaults.ModeratorAgent
		}
		if _, ok := rt.agents.Get(moderator); !ok {
			return fmt.Errorf("unknown moderator agent %q (see 'maestro agents')", moderator)
		}

		name := strings.Join(args, " ")
		chat, err := rt.store.CreateChat(name, moderator)
		if err != nil {
			return fmt.Errorf("create chat: %w", err)
		}

		fmt.Printf("Created chat %q\n", chat.Name)
		fmt.Printf("  ID:        %s\n", chat.ID)
		fmt.Printf("  Moderator: %s\n", chat.ModeratorAgentID)
		fmt.Printf("  Log:       %s\n", chat.LogPath)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createModerator, "moderator", "", "Moderator agent type (default from config)")
}

package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pedramamini/Maestro-sub005/pkg/models"
	"github.com/spf13/cobra"
)

var showTail int

var showCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Show a chat's participants and log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		chat, err := rt.store.LoadChat(args[0])
		if err != nil {
			return fmt.Errorf("load chat: %w", err)
		}
		if chat == nil {
			return fmt.Errorf("chat %s not found", args[0])
		}

		fmt.Printf("Chat: %s (%s)\n", chat.Name, chat.ID)
		fmt.Printf("  Moderator: %s\n", chat.ModeratorAgentID)
		if chat.ModeratorSessionID != "" {
			fmt.Printf("  Moderator session: %s\n", chat.ModeratorSessionID)
		}

		if len(chat.Participants) == 0 {
			fmt.Println("  Participants: none")
		} else {
			fmt.Println("  Participants:")
			for _, p := range chat.Participants {
				usage := ""
				if p.TokensUsed > 0 {
					usage = fmt.Sprintf("  %d tokens ($%.4f)", p.TokensUsed, p.Cost)
				}
				active := ""
				if !p.LastActive.IsZero() {
					active = fmt.Sprintf("  active %s ago", formatDuration(time.Since(p.LastActive)))
				}
				fmt.Printf("    %s (%s)%s%s\n", p.Name, p.AgentID, usage, active)
			}
		}

		entries, err := rt.store.ReadLog(chat.ID)
		if err != nil {
			return fmt.Errorf("read chat log: %w", err)
		}
		if showTail > 0 && len(entries) > showTail {
			entries = entries[len(entries)-showTail:]
		}

		fmt.Println()
		for _, e := range entries {
			printLogEntry(e)
		}
		return nil
	},
}

var (
	userColor      = color.New(color.FgGreen, color.Bold)
	moderatorColor = color.New(color.FgCyan, color.Bold)
	agentColor     = color.New(color.FgYellow, color.Bold)
)

// printLogEntry renders one log entry with a colored sender label.
func printLogEntry(e models.ChatLogEntry) {
	label := e.Sender
	c := agentColor
	switch e.Sender {
	case models.SenderUser:
		c = userColor
	case models.SenderModerator:
		c = moderatorColor
	}
	suffix := ""
	if e.ReadOnly {
		suffix = " [read-only]"
	}
	fmt.Printf("%s %s%s\n%s\n\n",
		c.Sprintf("[%s]", label),
		e.Timestamp.Format("15:04:05"),
		suffix,
		e.Content)
}

func init() {
	showCmd.Flags().IntVar(&showTail, "tail", 0, "Show only the last N log entries")
}

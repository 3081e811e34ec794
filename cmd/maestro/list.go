package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listIDStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	listNameStyle   = lipgloss.NewStyle().Bold(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List group chats",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		chats, err := rt.store.ListChats()
		if err != nil {
			return fmt.Errorf("list chats: %w", err)
		}
		if len(chats) == 0 {
			fmt.Println("No chats. Run 'maestro create <name>' to start one.")
			return nil
		}

		fmt.Println(listHeaderStyle.Render("Group Chats"))
		for _, chat := range chats {
			names := chat.ParticipantNames()
			participants := "none"
			if len(names) > 0 {
				participants = strings.Join(names, ", ")
			}
			fmt.Printf("%s %s\n", listNameStyle.Render(chat.Name), listIDStyle.Render(chat.ID))
			fmt.Printf("    moderator: %s  participants: %s\n", chat.ModeratorAgentID, participants)
			fmt.Printf("    created: %s ago\n", formatDuration(time.Since(chat.CreatedAt)))
		}
		return nil
	},
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}

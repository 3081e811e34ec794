package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a group chat and its logs",
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
			fmt.Printf("Chat %s does not exist.\n", args[0])
			return nil
		}

		if !deleteForce {
			fmt.Printf("Delete chat %q and its logs? [y/N] ", chat.Name)
			reader := bufio.NewReader(os.Stdin)
			answer, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(answer)) != "y" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := rt.store.DeleteChat(chat.ID); err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		fmt.Printf("Deleted chat %q.\n", chat.Name)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete without confirmation")
}

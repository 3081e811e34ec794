package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/pedramamini/Maestro-sub005/internal/store"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <chat-id>",
	Short: "Follow a chat's log as entries arrive",
	Long: `Print the chat log and then follow it, rendering new entries as other
processes append them. Useful alongside 'maestro send' in another terminal.`,
	Args: cobra.ExactArgs(1),
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

		entries, err := rt.store.ReadLog(chat.ID)
		if err != nil {
			return fmt.Errorf("read chat log: %w", err)
		}
		for _, e := range entries {
			printLogEntry(e)
		}
		seen := len(entries)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		defer watcher.Close()

		// Watch the directory: the log file may not exist yet, and appends
		// show up as writes on the file path.
		if err := watcher.Add(filepath.Join(rt.store.BaseDir(), "chats")); err != nil {
			return fmt.Errorf("watch chat dir: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != chat.LogPath || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				entries, err := store.ReadLogFile(chat.LogPath)
				if err != nil {
					continue
				}
				for _, e := range entries[min(seen, len(entries)):] {
					printLogEntry(e)
				}
				if len(entries) > seen {
					seen = len(entries)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			}
		}
	},
}

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pedramamini/Maestro-sub005/internal/agents"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List known agent types and their availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}

		available := color.New(color.FgGreen).Sprint("available")
		missing := color.New(color.FgRed).Sprint("not installed")

		for _, p := range rt.agents.All() {
			status := missing
			if rt.agents.Available(p.ID) {
				status = available
			}
			fmt.Printf("%s (%s) - %s\n", p.ID, p.DisplayName, status)
			fmt.Printf("    command: %s %s\n", p.Command, strings.Join(p.BatchArgs, " "))
			fmt.Printf("    resume:  %s\n", describeResume(p))
		}
		return nil
	},
}

func describeResume(p *agents.Profile) string {
	switch p.ResumeStyle {
	case agents.ResumeFlag:
		return fmt.Sprintf("%s <session-id>", p.ResumeToken)
	case agents.ResumeSubcommand:
		return fmt.Sprintf("%s <session-id> (subcommand)", p.ResumeToken)
	default:
		return "not supported"
	}
}

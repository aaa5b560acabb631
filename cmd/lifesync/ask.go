package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

func newAskCmd(configPath *string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:     "ask <question>",
		Short:   "Ask the AI dietitian a question",
		Example: `  lifesync ask "How much protein should I eat after a workout?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			dietitian, err := a.dietitian(cmd.Context(), clockwork.NewRealClock())
			if err != nil {
				return err
			}

			reply := dietitian.AskDetailed(cmd.Context(), strings.Join(args, " "))
			if reply.Degraded {
				a.log.Warn("No model answered, showing fallback advice", "attempts", len(reply.Attempts))
			} else {
				a.log.Debug("Answered", "model", reply.Model, "attempts", len(reply.Attempts))
			}

			if raw {
				fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
				return nil
			}
			renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
			if err != nil {
				return fmt.Errorf("failed to create markdown renderer: %w", err)
			}
			out, err := renderer.Render(reply.Text)
			if err != nil {
				return fmt.Errorf("failed to render reply: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the reply without markdown rendering")
	return cmd
}

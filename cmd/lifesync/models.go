package main

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newModelsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List Gemini models that support content generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			client, err := a.geminiClient(cmd.Context())
			if err != nil {
				return err
			}
			if client == nil {
				return errors.New("gemini.api_key is not set (LIFESYNC_GEMINI_API_KEY or GEMINI_API_KEY)")
			}

			models, err := client.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, m := range models {
				marker := " "
				if slices.Contains(a.cfg.Gemini.Models, m.Name) {
					marker = "*"
				}
				fmt.Fprintf(w, "%s %-40s %s\n", marker, m.Name, m.DisplayName)
			}
			fmt.Fprintf(w, "\n%d models; * marks the configured fallback chain\n", len(models))
			return nil
		},
	}
}

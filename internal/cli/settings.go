package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Settings commands",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	cmd.AddCommand(newSettingsResetCmd())

	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Settings

			if err := client.Get("/api/v1/settings", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	var darkMode, visualizer bool
	var volume int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  resonance settings set --dark-mode=false
  resonance settings set --volume 40 --visualizer=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("dark-mode") {
				req["dark_mode"] = darkMode
			}
			if cmd.Flags().Changed("volume") {
				req["volume"] = volume
			}
			if cmd.Flags().Changed("visualizer") {
				req["visualizer_enabled"] = visualizer
			}
			if len(req) == 0 {
				return fmt.Errorf("at least one of --dark-mode, --volume or --visualizer is required")
			}

			var result Settings
			if err := client.Patch("/api/v1/settings", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&darkMode, "dark-mode", true, "Use the dark theme")
	cmd.Flags().IntVar(&volume, "volume", 0, "Default volume (0-100)")
	cmd.Flags().BoolVar(&visualizer, "visualizer", true, "Show the visualizer")

	return cmd
}

func newSettingsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Settings

			if err := client.Post("/api/v1/settings/reset", nil, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Playback commands",
	}

	cmd.AddCommand(newPlayerStatusCmd())
	cmd.AddCommand(newIntentCmd("play", "Toggle between playing and paused", "togglePlay"))
	cmd.AddCommand(newIntentCmd("mute", "Toggle mute", "toggleMute"))
	cmd.AddCommand(newIntentCmd("shuffle", "Toggle shuffle", "toggleShuffle"))
	cmd.AddCommand(newIntentCmd("repeat", "Toggle repeat", "toggleRepeat"))
	cmd.AddCommand(newIntentCmd("favorite", "Toggle favorite on the current track", "toggleFavorite"))
	cmd.AddCommand(newIntentCmd("next", "Skip to the next track", "skipNext"))
	cmd.AddCommand(newIntentCmd("prev", "Skip to the previous track", "skipPrevious"))
	cmd.AddCommand(newIntentCmd("visualizer", "Cycle the visualizer style", "cycleVisualizer"))
	cmd.AddCommand(newPlayerVolumeCmd())
	cmd.AddCommand(newPlayerSeekCmd())

	return cmd
}

func newPlayerStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the playback session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerState

			if err := client.Get("/api/v1/player", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

// newIntentCmd builds a command that dispatches an intent without a value
func newIntentCmd(use, short, intent string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatch(cmd, map[string]any{"type": intent})
		},
	}
}

func newPlayerVolumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volume <0-100>",
		Short: "Set the volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid volume %q", args[0])
			}
			return dispatch(cmd, map[string]any{"type": "setVolumeFromInput", "value": v})
		},
	}
}

func newPlayerSeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seek <fraction|m:ss>",
		Short: "Seek within the track",
		Long:  `Seek to a fraction of the track (0 to 1) or to a timestamp such as 1:30.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fraction, err := seekFraction(args[0])
			if err != nil {
				return err
			}
			return dispatch(cmd, map[string]any{"type": "seek", "value": fraction})
		},
	}
}

// seekFraction converts a seek target to a fraction of the track. Timestamps
// need the track duration, which is read from the server.
func seekFraction(arg string) (float64, error) {
	if !strings.Contains(arg, ":") {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seek target %q", arg)
		}
		return f, nil
	}

	secs, err := parseTimestamp(arg)
	if err != nil {
		return 0, err
	}

	var state PlayerState
	if err := client.Get("/api/v1/player", &state); err != nil {
		return 0, err
	}
	if state.Track.Duration <= 0 {
		return 0, nil
	}
	return float64(secs) / float64(state.Track.Duration), nil
}

func parseTimestamp(s string) (int, error) {
	minStr, secStr, _ := strings.Cut(s, ":")
	mins, err := strconv.Atoi(minStr)
	if err != nil || mins < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	secs, err := strconv.Atoi(secStr)
	if err != nil || secs < 0 || secs >= 60 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return mins*60 + secs, nil
}

func dispatch(cmd *cobra.Command, req map[string]any) error {
	var result PlayerState

	if err := client.Post("/api/v1/player/intents", req, &result); err != nil {
		return err
	}

	output(cmd).Print(result)
	return nil
}

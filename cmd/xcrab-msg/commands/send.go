package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/hungl6844/xcrab/internal/msg"
)

var sendCmd = &cobra.Command{
	Use:   "send ACTION...",
	Short: "Send a raw action string",
	Long: `Send a raw action string to the window manager.

The tokens are joined with spaces and delivered verbatim, so new verbs work
without a new xcrab-msg.`,
	Example: `  # Close the focused window
  xcrab-msg send close

  # Move focus one tile to the right
  xcrab-msg send focus right`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	return send(strings.Join(args, " "))
}

func send(action string) error {
	path, err := socketPath()
	if err != nil {
		return err
	}
	return msg.Send(path, action)
}

package commands

import "github.com/spf13/cobra"

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the focused window",
	Long: `Ask the window manager to close the focused window.

Clients advertising WM_DELETE_WINDOW get a polite close request; everything
else is destroyed outright.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return send("close")
	},
}

func init() {
	rootCmd.AddCommand(closeCmd)
}

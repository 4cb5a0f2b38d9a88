package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var focusCmd = &cobra.Command{
	Use:       "focus DIRECTION",
	Short:     "Move focus to a neighbouring tile",
	Example:   `  xcrab-msg focus left`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "left", "right"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(fmt.Sprintf("focus %s", args[0]))
	},
}

func init() {
	rootCmd.AddCommand(focusCmd)
}

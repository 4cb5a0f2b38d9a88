package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hungl6844/xcrab/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "xcrab-msg",
		Short: "xcrab-msg - control a running xcrab window manager",
		Long: `xcrab-msg talks to a running xcrab instance over its control socket.

Each invocation sends one action string; the manager answers with an error
message on failure and nothing on success.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/xcrab/config.toml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// socketPath resolves the control socket from the shared config file.
func socketPath() (string, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg.Msg.SocketPath, nil
}

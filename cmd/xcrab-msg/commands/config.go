package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hungl6844/xcrab/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the xcrab configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long:  `Display the configuration as xcrab resolves it, defaults included.`,
	Example: `  # Show configuration as YAML (default)
  xcrab-msg config show

  # Show configuration as JSON
  xcrab-msg config show --format json`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath(cfgFile)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var formatFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml or json)")
}

// showConfig is the serializable view of the resolved configuration.
type showConfig struct {
	BorderColor  string            `json:"border_color" yaml:"border_color"`
	FocusedColor string            `json:"focused_color" yaml:"focused_color"`
	BorderSize   uint16            `json:"border_size" yaml:"border_size"`
	GapSize      uint16            `json:"gap_size" yaml:"gap_size"`
	OuterGapSize uint16            `json:"outer_gap_size" yaml:"outer_gap_size"`
	SocketPath   string            `json:"socket_path" yaml:"socket_path"`
	DebugHTTP    string            `json:"debug_http_addr,omitempty" yaml:"debug_http_addr,omitempty"`
	Binds        map[string]string `json:"binds,omitempty" yaml:"binds,omitempty"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := showConfig{
		BorderColor:  fmt.Sprintf("0x%06x", cfg.BorderColor),
		FocusedColor: fmt.Sprintf("0x%06x", cfg.FocusedColor),
		BorderSize:   cfg.BorderSize,
		GapSize:      cfg.GapSize,
		OuterGapSize: cfg.OuterGapSize,
		SocketPath:   cfg.Msg.SocketPath,
		DebugHTTP:    cfg.Debug.HTTPAddr,
	}
	if len(cfg.Binds) > 0 {
		out.Binds = make(map[string]string, len(cfg.Binds))
		for _, b := range cfg.Binds {
			out.Binds[b.Spec()] = b.Action
		}
	}

	switch formatFlag {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "yaml":
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		return encoder.Encode(out)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", formatFlag)
	}
}

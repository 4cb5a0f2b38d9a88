package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hungl6844/xcrab/internal/logger"
	"github.com/spf13/viper"
)

// Config is the immutable runtime configuration. It is loaded once at startup
// and shared by reference afterwards.
type Config struct {
	BorderColor  uint32
	FocusedColor uint32
	BorderSize   uint16
	GapSize      uint16
	OuterGapSize uint16
	LogLevel     string
	LogPretty    bool
	Msg          MsgConfig
	Debug        DebugConfig
	Binds        []Keybind
}

// MsgConfig configures the control socket shared by both binaries.
type MsgConfig struct {
	SocketPath string
}

// DebugConfig configures the optional introspection HTTP server.
type DebugConfig struct {
	HTTPAddr string
}

const (
	defaultBorderColor  = 0xff0000
	defaultFocusedColor = 0x0000ff
	defaultBorderSize   = 5
	defaultGapSize      = 20
)

// ConfigPath resolves the config file path. An empty argument selects
// $HOME/.config/xcrab/config.toml.
func ConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	return filepath.Join(home, ".config", "xcrab", "config.toml"), nil
}

// DefaultSocketPath returns the control socket path used when msg.socket_path
// is not configured.
func DefaultSocketPath() (string, error) {
	home := os.Getenv("HOME")
	if home == "" {
		return "", fmt.Errorf("HOME is not set")
	}
	return filepath.Join(home, ".config", "xcrab", "msg.sock"), nil
}

// Load reads the configuration file. A missing or unreadable file falls back
// to defaults with a warning; a malformed keybinding aborts the load.
func Load(path string) (*Config, error) {
	log := logger.WithComponent("config")

	cfgPath, err := ConfigPath(path)
	if err != nil {
		return nil, err
	}
	sockPath, err := DefaultSocketPath()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(cfgPath)
	v.SetConfigType("toml")

	v.SetDefault("border_color", defaultBorderColor)
	v.SetDefault("focused_color", defaultFocusedColor)
	v.SetDefault("border_size", defaultBorderSize)
	v.SetDefault("gap_size", defaultGapSize)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("msg.socket_path", sockPath)
	v.SetDefault("debug.http_addr", "")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Str("path", cfgPath).Msg("could not read config file, using defaults")
	}

	cfg := &Config{
		BorderColor:  v.GetUint32("border_color"),
		FocusedColor: v.GetUint32("focused_color"),
		BorderSize:   v.GetUint16("border_size"),
		GapSize:      v.GetUint16("gap_size"),
		OuterGapSize: v.GetUint16("gap_size"),
		LogLevel:     v.GetString("log_level"),
		LogPretty:    v.GetBool("log_pretty"),
		Msg: MsgConfig{
			SocketPath: v.GetString("msg.socket_path"),
		},
		Debug: DebugConfig{
			HTTPAddr: v.GetString("debug.http_addr"),
		},
	}
	if v.IsSet("outer_gap_size") {
		cfg.OuterGapSize = v.GetUint16("outer_gap_size")
	}

	for spec, action := range v.GetStringMapString("binds") {
		bind, err := ParseBind(spec, action)
		if err != nil {
			return nil, fmt.Errorf("invalid keybinding %q: %w", spec, err)
		}
		cfg.Binds = append(cfg.Binds, bind)
	}

	return cfg, nil
}

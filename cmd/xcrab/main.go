package main

import (
	"flag"
	"os"

	"github.com/hungl6844/xcrab/internal/api"
	"github.com/hungl6844/xcrab/internal/config"
	"github.com/hungl6844/xcrab/internal/logger"
	"github.com/hungl6844/xcrab/internal/wm"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default is $HOME/.config/xcrab/config.toml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Get().Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log := logger.WithComponent("main")

	manager, err := wm.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		os.Exit(1)
	}

	if cfg.Debug.HTTPAddr != "" {
		server := api.NewServer(cfg.Debug.HTTPAddr, manager.SnapshotFunc())
		manager.SetEventHook(server.Publish)
		server.Start()
		defer server.Stop()
	}

	log.Info().Msg("xcrab running")
	if err := manager.Run(); err != nil {
		log.Error().Err(err).Msg("fatal error")
		os.Exit(1)
	}
}

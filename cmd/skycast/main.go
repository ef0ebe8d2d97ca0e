// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

//go:build linux

// Package main implements the skycast weather dashboard.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/wneessen/skycast/internal/config"
	"github.com/wneessen/skycast/internal/i18n"
	"github.com/wneessen/skycast/internal/logger"
	"github.com/wneessen/skycast/internal/service"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGABRT, os.Interrupt)
	defer cancel()

	// Initialize Logger
	log := logger.NewLogger(slog.LevelError)

	confPath := flag.String("config", "", "path to the config file")
	city := flag.String("city", "", "city to show the weather for (default: detect the device location)")
	page := flag.Int("page", 0, "also print the given page of the global city table")
	watch := flag.Bool("watch", false, "keep running and refresh the dashboard periodically")
	serve := flag.Bool("serve", false, "serve the JSON API instead of printing the dashboard")
	flag.Parse()

	conf, err := loadConfig(*confPath)
	if err != nil {
		log.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log = logger.NewLogger(conf.LogLevel)
	t, err := i18n.New(conf.Locale)
	if err != nil {
		log.Error("failed to initialize localizer", logger.Err(err))
		os.Exit(1)
	}

	serv, err := service.New(conf, log, t)
	if err != nil {
		log.Error("failed to initialize skycast service", logger.Err(err))
		os.Exit(1)
	}

	log.Debug("starting skycast", slog.String("version", version), slog.String("commit", commit),
		slog.String("date", date))
	switch {
	case *serve:
		err = serv.Serve(ctx)
	case *watch:
		err = serv.Run(ctx, *city)
	default:
		err = serv.Once(ctx, *city, *page)
	}
	if err != nil {
		log.Error("skycast failed", logger.Err(err))
		os.Exit(1)
	}
}

// loadConfig reads the given config file. Without a path, the default location is tried
// before falling back to defaults and environment variables.
func loadConfig(confPath string) (*config.Config, error) {
	if confPath != "" {
		return config.NewFromFile(filepath.Dir(confPath), filepath.Base(confPath))
	}
	if path, file := findConfigFile(); path != "" && file != "" {
		return config.NewFromFile(path, file)
	}
	return config.New()
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "skycast", "config."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}

// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
)

// errAbnormalExit is returned by the root command when the server stopped
// for any reason other than a shutdown signal.
var errAbnormalExit = errors.New("server stopped abnormally")

type options struct {
	configPath string
	dryRun     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAbnormalExit) {
			logging.Error().Err(err).Msg("Startup failed")
		}
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "plex-telegram-notify",
		Short: "Relay Plex playback webhooks to a Telegram chat",
		Long: `plex-telegram-notify receives Plex Media Server webhooks and posts a
message to a Telegram chat when someone starts or stops playing media.

Configuration comes from built-in defaults, an optional YAML file and the
environment, in that order of priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (overrides CONFIG_PATH)")
	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "log notifications instead of sending them")

	root.AddCommand(newCheckConfigCmd(opts))
	return root
}

func newCheckConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the configuration, then print it with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Summary())
			return nil
		},
	}
}

// loadConfig loads the configuration and applies command-line overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadWithKoanf(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.dryRun {
		cfg.Telegram.DryRun = true
	}
	return cfg, nil
}

func runServer(parent context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().Str("config", cfg.Summary()).Msg("Starting plex-telegram-notify")
	if cfg.Telegram.DryRun {
		logging.Warn().Msg("Dry run enabled, notifications are logged and not sent")
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	if code := a.run(ctx); code != exitOK {
		return errAbnormalExit
	}
	return nil
}

// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/plex-telegram-notify/internal/api"
	"github.com/tomtom215/plex-telegram-notify/internal/config"
	"github.com/tomtom215/plex-telegram-notify/internal/delivery"
	"github.com/tomtom215/plex-telegram-notify/internal/images"
	"github.com/tomtom215/plex-telegram-notify/internal/logging"
	"github.com/tomtom215/plex-telegram-notify/internal/metrics"
	"github.com/tomtom215/plex-telegram-notify/internal/supervisor"
	"github.com/tomtom215/plex-telegram-notify/internal/supervisor/services"
)

// Process exit codes.
const (
	exitOK      = 0
	exitFailure = 1
)

// app is the wired process: the supervisor tree with its listeners and the
// channel on which the webhook handler reports fatal delivery errors.
type app struct {
	tree  *supervisor.SupervisorTree
	fatal chan error
}

// newApp builds every component from cfg. Nothing is started.
func newApp(cfg *config.Config) (*app, error) {
	source, err := images.NewSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("image source: %w", err)
	}

	client := delivery.NewTelegramClient(&cfg.Telegram)
	dispatcher := delivery.NewDispatcher(client, &cfg.Telegram)

	fatal := make(chan error, 1)
	reporter := api.FatalReporterFunc(func(err error) {
		// Only the first fatal error matters; the process is stopping.
		select {
		case fatal <- err:
		default:
		}
	})

	webhook := api.NewWebhookHandler(cfg, source, dispatcher, reporter)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(&cfg.Server, webhook),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("supervisor tree: %w", err)
	}

	tree.AddAPIService(services.NewHTTPServerService("webhook-server", server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Str("image_source", source.Name()).Msg("Webhook server added")

	if cfg.Metrics.Enabled {
		metricsServer := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		tree.AddObservabilityService(services.NewHTTPServerService("metrics-server", metricsServer, cfg.Server.ShutdownTimeout))
		logging.Info().Str("addr", metricsServer.Addr).Msg("Metrics server added")
	}

	return &app{tree: tree, fatal: fatal}, nil
}

// run serves until ctx is canceled, a fatal delivery error is reported or
// the tree stops by itself, and returns the process exit code.
func (a *app) run(ctx context.Context) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := a.tree.ServeBackground(ctx)
	code := exitOK

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutting down")
		<-errCh
	case err := <-a.fatal:
		logging.Error().Err(err).Msg("Telegram rejected the bot configuration, shutting down")
		code = exitFailure
		cancel()
		<-errCh
	case err := <-errCh:
		// The tree only returns on its own when a service terminated it.
		logging.Error().Err(err).Msg("Supervisor tree stopped")
		code = exitFailure
	}

	unstopped, _ := a.tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	if code == exitOK {
		logging.Info().Msg("Stopped gracefully")
	}
	return code
}

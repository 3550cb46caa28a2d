// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package supervisor runs the process's listeners under a thejerf/suture v4
supervisor tree.

	plex-telegram-notify
	├── api-layer
	│   └── webhook-server (HTTPServerService)
	└── observability-layer
	    └── metrics-server (HTTPServerService, METRICS_ENABLED)

Crashed services are restarted with suture's backoff. Supervisor events
(start, failure, backoff) are logged through sutureslog, which writes to
an *slog.Logger; logging.NewSlogLogger bridges that to zerolog.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService("webhook-server", server, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)

Serve returns when ctx is canceled or when a service returns an error
wrapping suture.ErrTerminateSupervisorTree.
*/
package supervisor

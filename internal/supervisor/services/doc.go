// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package services adapts long-running components to suture.Service.

HTTPServerService wraps an *http.Server (the webhook listener and the
optional metrics listener). Serve blocks until its context is canceled and
then calls Shutdown with a bounded timeout.

Return values drive the supervisor:

	context.Canceled                  normal stop, no restart
	wraps ErrTerminateSupervisorTree  listen failure, whole tree stops
	any other error                   restart with backoff
*/
package services

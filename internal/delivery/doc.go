// Plex Telegram Notify - Plex playback notifications for Telegram
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plex-telegram-notify

/*
Package delivery sends notifications to a Telegram chat.

TelegramClient talks to the Bot API (sendMessage and sendPhoto). Dispatcher
applies the delivery policy on top of it:

  - In dry-run mode nothing is sent; the message and the selected image are
    logged instead.
  - When an image is selected, a photo with the message as caption is tried
    first. Any failure while loading or uploading falls back to text.
  - The text message is sent once. HTTP 400, 401, 403 and 404 mean the bot
    token or chat ID is wrong and are returned as *FatalConfigError. Every
    other failure is logged and the notification is dropped.

Example:

	client := delivery.NewTelegramClient(&cfg.Telegram)
	dispatcher := delivery.NewDispatcher(client, &cfg.Telegram)
	outcome, err := dispatcher.Send(ctx, delivery.Notification{Text: "..."})
*/
package delivery

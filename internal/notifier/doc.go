// Package notifier delivers quest reminders to chat platforms.
//
// Every backend implements Notifier. Discord delivery goes through a
// Broadcaster, which enumerates destinations (guilds) and posts to the
// subchannel whose name matches the configured channel in each one. Telegram
// and Twitter backends post straight to their configured targets.
package notifier

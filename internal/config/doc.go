// Package config loads the service configuration from a YAML file and the
// environment.
//
// Every field has a default, so the service runs without a config file as long
// as the credentials for the selected notifier are set:
//
//	discord   DISCORD_TOKEN
//	telegram  TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_IDS
//	twitter   TWITTER_API_KEY, TWITTER_API_SECRET, TWITTER_ACCESS_TOKEN, TWITTER_ACCESS_SECRET
package config

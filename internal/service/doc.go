// Package service runs the scrape and reminder workers.
//
// The scrape worker refreshes the pending quest store from the urgent quest
// listing and the reminder worker pops due quests from it. Both workers wait
// on a cron schedule between runs and stop when the context is cancelled.
package service

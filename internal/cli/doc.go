// Package cli implements the command-line interface for pso2-quests.
//
// The cli package provides the Cobra-based CLI. The run command starts the
// scrape and reminder workers, scrape performs a single scrape cycle and prints
// the result as text, JSON or iCalendar, and parse decodes a saved article page.
// It wires the config, scraper, store, reminder, notifier and service packages
// together.
package cli

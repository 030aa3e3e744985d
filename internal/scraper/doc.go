// Package scraper provides HTTP fetching and HTML decoding for PSO2 urgent quest calendars.
//
// The scraper fetches the public urgent-quest news listing, follows each article
// preview, and decodes the color-coded schedule tables found on every article.
// Each article carries pairs of tables: a legend mapping a swatch color to a quest
// name, and a grid whose header row holds dates and whose following rows hold
// times of day. Colored grid cells are resolved into absolute start instants in a
// fixed source timezone.
package scraper

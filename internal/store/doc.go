// Package store holds the pending urgent quest list shared by the scraper and
// the reminder scheduler.
//
// The list lives only in memory and is replaced wholesale on every scrape. It is
// always sorted furthest-future first, which lets the reminder scheduler stop at
// the first quest that is not yet due.
package store

// Package quest provides the urgent quest type shared by the scraper, the
// in-memory store and the reminder scheduler.
//
// A quest list is kept in descending start-time order: the quest furthest in
// the future comes first and the soonest-upcoming quest is last, so consumers
// can inspect and pop from the tail.
package quest

// Package reminder decides which pending quests are due a notification.
//
// The store keeps quests in descending start order, so the soonest quest is
// always last. Each check pops expired quests silently, pops quests inside the
// reminder window for notification, and stops at the first quest still further
// out than the window.
package reminder

// Package catalog keeps an in-memory registry of the items Steamlytics
// tracks.
//
// The registry loads the full catalog at startup (blocking) and then
// reconciles it on an interval, emitting an ItemChange for every item that
// appears or disappears. The poller uses it to drop tracked items the
// catalog does not know about before asking for their prices.
package catalog

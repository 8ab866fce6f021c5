// Package dashboard runs the render loop.
//
// Each frame drains the snapshot channel to its newest entry, builds a View
// from the held snapshot and producer metrics, redraws the whole frame into a
// cell buffer, flushes it, and waits up to one poll interval for input.
// The loop owns the terminal; the producer only ever reaches it through the channel.
package dashboard

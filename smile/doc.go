// Package smile holds the implied-volatility smile data model.
//
// A Dataset is an x-ascending sequence of points, copied on construction so
// a published value cannot be changed by its producer. A Snapshot wraps one
// Dataset with the producer cycle that created it.
package smile

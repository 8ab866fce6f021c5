// Package pipeline moves smile snapshots from a background producer to the render loop.
//
// The Producer computes a Dataset on a fixed period and publishes it on a
// bounded Channel. The render loop drains the Channel without blocking and
// keeps only the newest Snapshot. Nothing else is shared between the two.
package pipeline

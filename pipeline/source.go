package pipeline

import (
	"context"

	"github.com/lixenwraith/smiledash/smile"
)

// Source computes one dataset per producer cycle
// Compute may block on the network and must return when ctx is done
type Source interface {
	Name() string
	Compute(ctx context.Context) (smile.Dataset, error)
}

// SourceFunc adapts a function to Source
type SourceFunc struct {
	SourceName string
	Fn         func(ctx context.Context) (smile.Dataset, error)
}

// Name implements Source
func (f SourceFunc) Name() string {
	return f.SourceName
}

// Compute implements Source
func (f SourceFunc) Compute(ctx context.Context) (smile.Dataset, error) {
	return f.Fn(ctx)
}

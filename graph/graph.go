package graph

import (
	"context"
	"errors"
)

// END is the pseudo-node a branch edges into when it is finished.
const END = "END"

// DefaultMaxSteps bounds the number of supersteps a single Invoke may run.
const DefaultMaxSteps = 25

var (
	ErrEntryPointNotSet = errors.New("entry point not set")
	ErrNodeNotFound     = errors.New("node not found")
	ErrNoOutgoingEdge   = errors.New("no outgoing edge found for node")
	// ErrMaxSteps usually means a cycle without a way out.
	ErrMaxSteps = errors.New("graph exceeded max steps")
)

// NodeFunc is the work performed by a node. It receives the merged state of
// the previous superstep and returns a partial update.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Node is a named NodeFunc. Description shows up in diagrams.
type Node[S any] struct {
	Name        string
	Description string
	Function    NodeFunc[S]
}

// Edge is a static transition; every edge out of a node is followed.
type Edge struct {
	From, To string
}

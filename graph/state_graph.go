package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// StateGraph is a directed graph of nodes sharing a state of type S.
//
// Nodes reachable in the same step run concurrently. Their results are merged
// into the shared state through the graph's Schema before the next step starts,
// so a node fanned-in from several predecessors runs exactly once.
//
//	g := graph.NewStateGraph[map[string]any]()
//	g.SetSchema(graph.NewMapSchema())
//	g.AddNode("a", "first", fa)
//	g.AddNode("b", "second", fb)
//	g.SetEntryPoint("a")
//	g.AddEdge("a", "b")
//	g.AddEdge("b", graph.END)
type StateGraph[S any] struct {
	nodes      map[string]Node[S]
	edges      []Edge
	entryPoint string
	schema     Schema[S]
	listeners  []NodeListener
	maxSteps   int
}

// NewStateGraph creates an empty graph.
func NewStateGraph[S any]() *StateGraph[S] {
	return &StateGraph[S]{
		nodes:    make(map[string]Node[S]),
		maxSteps: DefaultMaxSteps,
	}
}

// AddNode adds a new node to the state graph with the given name, description and function.
func (g *StateGraph[S]) AddNode(name string, description string, fn NodeFunc[S]) {
	g.nodes[name] = Node[S]{
		Name:        name,
		Description: description,
		Function:    fn,
	}
}

// AddEdge adds a new edge to the state graph between the "from" and "to" nodes.
// Several edges may leave the same node; their targets run in parallel.
func (g *StateGraph[S]) AddEdge(from, to string) {
	g.edges = append(g.edges, Edge{
		From: from,
		To:   to,
	})
}

// SetEntryPoint sets the entry point node name for the state graph.
func (g *StateGraph[S]) SetEntryPoint(name string) {
	g.entryPoint = name
}

// SetSchema sets the state schema for the graph.
func (g *StateGraph[S]) SetSchema(schema Schema[S]) {
	g.schema = schema
}

// SetMaxSteps overrides DefaultMaxSteps.
func (g *StateGraph[S]) SetMaxSteps(n int) {
	g.maxSteps = n
}

// AddListener registers a listener notified for every node of every run.
func (g *StateGraph[S]) AddListener(l NodeListener) {
	g.listeners = append(g.listeners, l)
}

// Nodes returns the node names in sorted order.
func (g *StateGraph[S]) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Compile validates the graph and returns a Runnable.
func (g *StateGraph[S]) Compile() (*Runnable[S], error) {
	if g.entryPoint == "" {
		return nil, ErrEntryPointNotSet
	}
	if _, ok := g.nodes[g.entryPoint]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, g.entryPoint)
	}

	var errs []error
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge source %s", ErrNodeNotFound, e.From))
		}
		if _, ok := g.nodes[e.To]; !ok && e.To != END {
			errs = append(errs, fmt.Errorf("%w: edge target %s", ErrNodeNotFound, e.To))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Runnable[S]{graph: g}, nil
}

// Runnable is a compiled StateGraph. It is safe to Invoke concurrently.
type Runnable[S any] struct {
	graph *StateGraph[S]
}

// Invoke executes the graph from its entry point until every branch reaches END.
func (r *Runnable[S]) Invoke(ctx context.Context, initialState S) (S, error) {
	var zero S
	state := initialState

	if r.graph.schema != nil {
		var err error
		state, err = r.graph.schema.Update(r.graph.schema.Init(), initialState)
		if err != nil {
			return zero, fmt.Errorf("failed to initialize state with schema: %w", err)
		}
	}

	currentNodes := []string{r.graph.entryPoint}
	for step := 0; len(currentNodes) > 0; step++ {
		if step >= r.graph.maxSteps {
			return zero, fmt.Errorf("%w (%d)", ErrMaxSteps, r.graph.maxSteps)
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		results, errs := r.executeNodesParallel(ctx, currentNodes, state)
		if err := errors.Join(errs...); err != nil {
			return zero, err
		}

		var err error
		state, err = r.mergeState(state, results)
		if err != nil {
			return zero, err
		}

		currentNodes, err = r.determineNextNodes(currentNodes)
		if err != nil {
			return zero, err
		}
	}

	return state, nil
}

// executeNodesParallel executes the given nodes in parallel and returns their results or errors.
func (r *Runnable[S]) executeNodesParallel(ctx context.Context, nodes []string, state S) ([]S, []error) {
	var wg sync.WaitGroup
	results := make([]S, len(nodes))
	errorsList := make([]error, len(nodes))

	for i, name := range nodes {
		node, ok := r.graph.nodes[name]
		if !ok {
			errorsList[i] = fmt.Errorf("%w: %s", ErrNodeNotFound, name)
			continue
		}

		SafeGo(&wg, func() {
			start := time.Now()
			r.notify(ctx, NodeEventStart, name, 0, nil)

			res, err := node.Function(ctx, state)
			if err != nil {
				r.notify(ctx, NodeEventError, name, time.Since(start), err)
				errorsList[i] = fmt.Errorf("error in node %s: %w", name, err)
				return
			}

			r.notify(ctx, NodeEventComplete, name, time.Since(start), nil)
			results[i] = res
		}, func(panicVal any) {
			err := fmt.Errorf("panic in node %s: %v", name, panicVal)
			r.notify(ctx, NodeEventError, name, 0, err)
			errorsList[i] = err
		})
	}
	wg.Wait()
	return results, errorsList
}

func (r *Runnable[S]) notify(ctx context.Context, event NodeEvent, name string, elapsed time.Duration, err error) {
	for _, l := range r.graph.listeners {
		l.OnNodeEvent(ctx, event, name, elapsed, err)
	}
}

// mergeState folds the step results into the current state in node order.
// Without a schema the last result replaces the state.
func (r *Runnable[S]) mergeState(current S, results []S) (S, error) {
	if r.graph.schema == nil {
		if len(results) == 0 {
			return current, nil
		}
		return results[len(results)-1], nil
	}

	state := current
	for _, res := range results {
		var err error
		state, err = r.graph.schema.Update(state, res)
		if err != nil {
			var zero S
			return zero, fmt.Errorf("schema update failed: %w", err)
		}
	}
	return state, nil
}

// determineNextNodes follows static edges from every node that just ran.
// Targets are deduplicated and END is dropped.
func (r *Runnable[S]) determineNextNodes(currentNodes []string) ([]string, error) {
	next := make(map[string]struct{})
	for _, name := range currentNodes {
		found := false
		for _, edge := range r.graph.edges {
			if edge.From != name {
				continue
			}
			found = true
			if edge.To != END {
				next[edge.To] = struct{}{}
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, name)
		}
	}

	nodes := make([]string, 0, len(next))
	for name := range next {
		nodes = append(nodes, name)
	}
	slices.Sort(nodes)
	return nodes, nil
}

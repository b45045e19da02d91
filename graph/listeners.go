package graph

import (
	"context"
	"time"

	"github.com/smallnest/pitchgraph/log"
)

// NodeEvent represents different types of node events
type NodeEvent string

const (
	// NodeEventStart indicates a node has started execution
	NodeEventStart NodeEvent = "start"

	// NodeEventComplete indicates a node has completed successfully
	NodeEventComplete NodeEvent = "complete"

	// NodeEventError indicates a node encountered an error
	NodeEventError NodeEvent = "error"
)

// NodeListener receives node lifecycle events. Listeners are called from the
// goroutine running the node, so implementations must be safe for concurrent use.
type NodeListener interface {
	OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, elapsed time.Duration, err error)
}

// NodeListenerFunc is a function adapter for NodeListener
type NodeListenerFunc func(ctx context.Context, event NodeEvent, nodeName string, elapsed time.Duration, err error)

// OnNodeEvent implements the NodeListener interface
func (f NodeListenerFunc) OnNodeEvent(ctx context.Context, event NodeEvent, nodeName string, elapsed time.Duration, err error) {
	f(ctx, event, nodeName, elapsed, err)
}

// LoggingListener writes node events to a log.Logger.
type LoggingListener struct {
	logger log.Logger
	graph  string
}

// NewLoggingListener returns a listener that tags each line with the graph name.
func NewLoggingListener(logger log.Logger, graphName string) *LoggingListener {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LoggingListener{logger: logger, graph: graphName}
}

// OnNodeEvent implements NodeListener.
func (l *LoggingListener) OnNodeEvent(_ context.Context, event NodeEvent, nodeName string, elapsed time.Duration, err error) {
	switch event {
	case NodeEventStart:
		l.logger.Debug("%s: node %s started", l.graph, nodeName)
	case NodeEventComplete:
		l.logger.Info("%s: node %s completed in %s", l.graph, nodeName, elapsed.Round(time.Millisecond))
	case NodeEventError:
		l.logger.Error("%s: node %s failed after %s: %v", l.graph, nodeName, elapsed.Round(time.Millisecond), err)
	}
}

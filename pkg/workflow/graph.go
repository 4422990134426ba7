package workflow

import (
	"context"
	"fmt"
	"time"
)

// GraphEnd is the terminal pseudo-node every run finishes on.
const GraphEnd = "__end__"

// NodeFunc mutates the state for one step. A returned error aborts the run.
type NodeFunc[S any] func(ctx context.Context, state S) error

// StepHook observes each completed step, e.g. for trace logging or streaming.
type StepHook[S any] func(node string, state S)

type conditionalEdge[S any] struct {
	router  func(state S) string
	pathMap map[string]string
}

// Graph is a builder for a small directed step graph with conditional edges.
type Graph[S any] struct {
	nodes       map[string]NodeFunc[S]
	edges       map[string]string
	conditional map[string]conditionalEdge[S]
	entryPoint  string
}

func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:       make(map[string]NodeFunc[S]),
		edges:       make(map[string]string),
		conditional: make(map[string]conditionalEdge[S]),
	}
}

func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) *Graph[S] {
	g.nodes[name] = fn
	return g
}

func (g *Graph[S]) SetEntryPoint(name string) *Graph[S] {
	g.entryPoint = name
	return g
}

func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.edges[from] = to
	return g
}

// AddConditionalEdges routes from a node through a decision function. When
// pathMap is non-nil the function's return value is translated through it;
// otherwise it is taken as the target node name directly.
func (g *Graph[S]) AddConditionalEdges(from string, router func(state S) string, pathMap map[string]string) *Graph[S] {
	g.conditional[from] = conditionalEdge[S]{router: router, pathMap: pathMap}
	return g
}

func (g *Graph[S]) Compile() *CompiledGraph[S] {
	return &CompiledGraph[S]{
		graph:    g,
		MaxSteps: 25,
	}
}

// CompiledGraph executes the graph sequentially from the entry point.
type CompiledGraph[S any] struct {
	graph *Graph[S]

	// StepTimeout bounds each node call when set.
	StepTimeout time.Duration
	// MaxSteps is a hard ceiling on executed nodes, a guard against a
	// miswired cycle regardless of any domain-level retry cap.
	MaxSteps int
}

// Invoke runs the graph to completion, mutating state in place.
func (c *CompiledGraph[S]) Invoke(ctx context.Context, state S, hooks ...StepHook[S]) error {
	current := c.graph.entryPoint
	if current == "" {
		return fmt.Errorf("graph has no entry point")
	}

	for steps := 0; ; steps++ {
		if steps >= c.MaxSteps {
			return fmt.Errorf("graph exceeded %d steps without reaching %s", c.MaxSteps, GraphEnd)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, ok := c.graph.nodes[current]
		if !ok {
			return fmt.Errorf("graph has no node %q", current)
		}

		if err := c.runNode(ctx, fn, state); err != nil {
			return fmt.Errorf("node %s: %w", current, err)
		}
		for _, hook := range hooks {
			hook(current, state)
		}

		next, err := c.nextNode(current, state)
		if err != nil {
			return err
		}
		if next == GraphEnd {
			return nil
		}
		current = next
	}
}

func (c *CompiledGraph[S]) runNode(ctx context.Context, fn NodeFunc[S], state S) error {
	if c.StepTimeout <= 0 {
		return fn(ctx, state)
	}
	stepCtx, cancel := context.WithTimeout(ctx, c.StepTimeout)
	defer cancel()
	return fn(stepCtx, state)
}

func (c *CompiledGraph[S]) nextNode(current string, state S) (string, error) {
	if cond, ok := c.graph.conditional[current]; ok {
		target := cond.router(state)
		if cond.pathMap != nil {
			if mapped, ok := cond.pathMap[target]; ok {
				target = mapped
			}
		}
		if target == "" {
			return "", fmt.Errorf("conditional edge from %s resolved to nothing", current)
		}
		return target, nil
	}
	if to, ok := c.graph.edges[current]; ok {
		return to, nil
	}
	return "", fmt.Errorf("node %s has no outgoing edge", current)
}

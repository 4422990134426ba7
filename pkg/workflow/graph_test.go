package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type counterState struct {
	visits []string
	n      int
}

func visit(name string) NodeFunc[*counterState] {
	return func(_ context.Context, s *counterState) error {
		s.visits = append(s.visits, name)
		return nil
	}
}

func TestGraphLinearRun(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", visit("b"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", GraphEnd)

	s := &counterState{}
	err := g.Compile().Invoke(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.visits)
}

func TestGraphConditionalPathMap(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("pick", visit("pick"))
	g.AddNode("left", visit("left"))
	g.AddNode("right", visit("right"))
	g.SetEntryPoint("pick")
	g.AddConditionalEdges("pick", func(s *counterState) string {
		return "go_left"
	}, map[string]string{
		"go_left":  "left",
		"go_right": "right",
	})
	g.AddEdge("left", GraphEnd)
	g.AddEdge("right", GraphEnd)

	s := &counterState{}
	err := g.Compile().Invoke(context.Background(), s)

	assert.NoError(t, err)
	assert.Equal(t, []string{"pick", "left"}, s.visits)
}

func TestGraphMaxStepsGuard(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("loop", visit("loop"))
	g.SetEntryPoint("loop")
	g.AddEdge("loop", "loop")

	compiled := g.Compile()
	compiled.MaxSteps = 5

	err := compiled.Invoke(context.Background(), &counterState{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 5 steps")
}

func TestGraphMissingEdge(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("orphan", visit("orphan"))
	g.SetEntryPoint("orphan")

	err := g.Compile().Invoke(context.Background(), &counterState{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no outgoing edge")
}

func TestGraphNodeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	g := NewGraph[*counterState]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", func(_ context.Context, s *counterState) error {
		return boom
	})
	g.AddNode("c", visit("c"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", GraphEnd)

	s := &counterState{}
	err := g.Compile().Invoke(context.Background(), s)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, s.visits)
}

func TestGraphStepHooks(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", visit("b"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", GraphEnd)

	var seen []string
	err := g.Compile().Invoke(context.Background(), &counterState{}, func(node string, _ *counterState) {
		seen = append(seen, node)
	})

	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestGraphNoEntryPoint(t *testing.T) {
	g := NewGraph[*counterState]()
	g.AddNode("a", visit("a"))

	err := g.Compile().Invoke(context.Background(), &counterState{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entry point")
}

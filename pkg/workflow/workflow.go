package workflow

import (
	"context"
	"time"

	"chatbot-router-be/pkg/llm"
)

// Workflow is the compiled routing graph plus its run-level limits.
type Workflow struct {
	Graph      *CompiledGraph[*State]
	RunTimeout time.Duration
}

// New wires the fixed five-node routing graph:
// classify -> one of three handlers; websearch additionally passes the
// judge, which either ends the run or loops back to classify.
func New(nodes *Nodes, stepTimeout, runTimeout time.Duration) *Workflow {
	builder := NewGraph[*State]()

	builder.AddNode(NodeClassify, nodes.Classify)
	builder.AddNode(NodeDirect, nodes.HandleDirect)
	builder.AddNode(NodeRetrieval, nodes.HandleRetrieval)
	builder.AddNode(NodeWebSearch, nodes.HandleWebSearch)
	builder.AddNode(NodeJudge, nodes.JudgeWebSearchResult)

	builder.SetEntryPoint(NodeClassify)

	builder.AddConditionalEdges(NodeClassify, nodes.RouteToHandler, nil)

	builder.AddEdge(NodeDirect, GraphEnd)
	builder.AddEdge(NodeRetrieval, GraphEnd)
	builder.AddEdge(NodeWebSearch, NodeJudge)
	builder.AddConditionalEdges(NodeJudge, nodes.JudgeEdge, nil)

	compiled := builder.Compile()
	compiled.StepTimeout = stepTimeout

	return &Workflow{
		Graph:      compiled,
		RunTimeout: runTimeout,
	}
}

// Run executes one isolated workflow pass over the given conversation.
// The returned state carries the final answer, the chosen route and the
// retry count; an error here means the direct handler failed, the one
// path with no degraded fallback.
func (w *Workflow) Run(ctx context.Context, messages []llm.Message, hooks ...StepHook[*State]) (*State, error) {
	if w.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.RunTimeout)
		defer cancel()
	}

	state := &State{Messages: messages}
	trace := func(node string, s *State) {
		s.Trace = append(s.Trace, node)
	}
	if err := w.Graph.Invoke(ctx, state, append([]StepHook[*State]{trace}, hooks...)...); err != nil {
		return nil, err
	}
	return state, nil
}

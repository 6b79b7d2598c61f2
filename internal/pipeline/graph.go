package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/SmartChain-HD/AI/internal/aggregate"
	"github.com/SmartChain-HD/AI/internal/evidence"
)

// State keys of the submit graph.
const (
	KeySubmission   = "submission"
	KeyJobs         = "jobs"
	KeyExtractions  = "extractions"
	KeyGroups       = "groups"
	KeySlotResults  = "slot_results"
	KeyCrossResults = "cross_results"
	KeyReport       = "report"
)

// Judge writes the optional overall comment of a report.
type Judge interface {
	Judge(ctx context.Context, domain string, report *aggregate.Report) (string, error)
}

// Runtime bundles what the graph nodes of one submission need.
type Runtime struct {
	Engine *Engine
	Judge  Judge
	Logger *slog.Logger
}

// Submission is the validated input of one run.
type Submission struct {
	PackageID string
	Period    evidence.Period
	Files     []evidence.FileRef
	// Slots maps file ids to their assigned slot.
	Slots map[string]string
}

// Execute builds the submit graph (triage → extract → verdict →
// crosscheck → aggregate → judge? → finalize), runs it, and returns the
// report from the final state.
func Execute(ctx context.Context, rt *Runtime, sub Submission) (*aggregate.Report, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil).Set(KeySubmission, sub)

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return get[*aggregate.Report](final, KeyReport)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("airun-submit")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	nodes := []struct {
		name string
		node state.StateNode
	}{
		{"triage", TriageNode(rt)},
		{"extract", ExtractNode(rt)},
		{"verdict", VerdictNode(rt)},
		{"crosscheck", CrossCheckNode(rt)},
		{"aggregate", AggregateNode(rt)},
		{"judge", JudgeNode(rt)},
		{"finalize", FinalizeNode(rt)},
	}
	for _, n := range nodes {
		if err := graph.AddNode(n.name, n.node); err != nil {
			return nil, err
		}
	}

	edges := []struct {
		from, to string
		pred     state.TransitionPredicate
	}{
		{"triage", "extract", nil},
		{"extract", "verdict", nil},
		{"verdict", "crosscheck", nil},
		{"crosscheck", "aggregate", nil},
	}
	for _, e := range edges {
		if err := graph.AddEdge(e.from, e.to, e.pred); err != nil {
			return nil, err
		}
	}

	// aggregate → judge (when a judge is configured)
	judging := func(state.State) bool { return rt.Judge != nil }
	if err := graph.AddEdge("aggregate", "judge", judging); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("aggregate", "finalize", state.Not(judging)); err != nil {
		return nil, err
	}
	if err := graph.AddEdge("judge", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("triage"); err != nil {
		return nil, err
	}
	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func get[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	v, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s has type %T", key, val)
	}
	return v, nil
}

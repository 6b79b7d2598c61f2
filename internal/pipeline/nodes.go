package pipeline

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/SmartChain-HD/AI/internal/aggregate"
	"github.com/SmartChain-HD/AI/internal/crosscheck"
	"github.com/SmartChain-HD/AI/internal/evidence"
	"github.com/SmartChain-HD/AI/internal/extraction"
	"github.com/SmartChain-HD/AI/internal/triage"
	"github.com/SmartChain-HD/AI/internal/verdict"
)

// TriageNode routes each submitted file by extension and pairs it with a
// slot. Hinted files keep their hint; unhinted files go through the
// matcher. Files the pipeline cannot read are skipped.
func TriageNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sub, err := get[Submission](s, KeySubmission)
		if err != nil {
			return s, fmt.Errorf("triage: %w", err)
		}

		accepted, skipped := triage.Files(sub.Files)
		for _, f := range skipped {
			rt.Logger.WarnContext(ctx, "file skipped", "file_id", f.FileID, "ext", triage.Ext(f.StorageURI))
		}

		jobs := make([]extraction.Job, 0, len(accepted))
		for _, item := range accepted {
			jobs = append(jobs, extraction.Job{
				Item: item,
				Slot: rt.slotFor(ctx, item, sub.Slots),
			})
		}

		rt.Logger.InfoContext(
			ctx, "triage node complete",
			"package_id", sub.PackageID,
			"accepted", len(accepted),
			"skipped", len(skipped),
		)

		return s.Set(KeyJobs, jobs), nil
	})
}

// slotFor resolves the slot of one file. A hint naming an undeclared slot,
// or a slot that does not accept the file's kind, leaves the file unknown.
func (rt *Runtime) slotFor(ctx context.Context, item triage.Item, hinted map[string]string) string {
	f := item.File
	if slot, ok := hinted[f.FileID]; ok {
		s, declared := rt.Engine.Domain.Slot(slot)
		switch {
		case !declared:
			rt.Logger.WarnContext(ctx, "hint names undeclared slot", "file_id", f.FileID, "slot", slot)
			return evidence.UnknownSlot
		case !s.Accepts(item.Kind):
			rt.Logger.WarnContext(ctx, "hinted slot rejects file kind", "file_id", f.FileID, "slot", slot, "kind", item.Kind)
			return evidence.UnknownSlot
		}
		return slot
	}

	if hint, ok := rt.Engine.Matcher.Match(ctx, f); ok {
		return hint.SlotName
	}
	return evidence.UnknownSlot
}

// ExtractNode runs the extraction coordinator over the triaged jobs.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sub, err := get[Submission](s, KeySubmission)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}
		jobs, err := get[[]extraction.Job](s, KeyJobs)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		results := rt.Engine.Extractor.Run(ctx, jobs, sub.Period)

		return s.Set(KeyExtractions, results), nil
	})
}

// VerdictNode groups extractions by slot and evaluates each group.
func VerdictNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		results, err := get[[]evidence.ExtractionResult](s, KeyExtractions)
		if err != nil {
			return s, fmt.Errorf("verdict: %w", err)
		}

		groups := verdict.GroupBySlot(results)
		s = s.Set(KeyGroups, groups)
		s = s.Set(KeySlotResults, verdict.EvaluateAll(rt.Engine.Domain, groups))

		return s, nil
	})
}

// CrossCheckNode runs the domain's cross-slot checks, if it has any.
func CrossCheckNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		var cross []evidence.SlotResult

		if rt.Engine.Checks != nil {
			sub, err := get[Submission](s, KeySubmission)
			if err != nil {
				return s, fmt.Errorf("crosscheck: %w", err)
			}
			groups, err := get[[]verdict.Group](s, KeyGroups)
			if err != nil {
				return s, fmt.Errorf("crosscheck: %w", err)
			}

			cross = rt.Engine.Checks.Run(crosscheck.Input{
				BySlot: verdict.BySlot(groups),
				Period: sub.Period,
			})
		}

		return s.Set(KeyCrossResults, cross), nil
	})
}

// AggregateNode folds slot and cross-check results into the report.
func AggregateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sub, err := get[Submission](s, KeySubmission)
		if err != nil {
			return s, fmt.Errorf("aggregate: %w", err)
		}
		slots, err := get[[]evidence.SlotResult](s, KeySlotResults)
		if err != nil {
			return s, fmt.Errorf("aggregate: %w", err)
		}
		cross, err := get[[]evidence.SlotResult](s, KeyCrossResults)
		if err != nil {
			return s, fmt.Errorf("aggregate: %w", err)
		}

		all := make([]evidence.SlotResult, 0, len(slots)+len(cross))
		all = append(all, slots...)
		all = append(all, cross...)

		report := aggregate.Aggregate(rt.Engine.Domain, sub.Period, all)

		rt.Logger.InfoContext(
			ctx, "aggregate node complete",
			"package_id", sub.PackageID,
			"slot_results", len(report.SlotResults),
			"verdict", report.Verdict,
		)

		return s.Set(KeyReport, report), nil
	})
}

// JudgeNode asks the model for an overall comment. A failed call leaves
// the report unchanged.
func JudgeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		report, err := get[*aggregate.Report](s, KeyReport)
		if err != nil {
			return s, fmt.Errorf("judge: %w", err)
		}

		domain := rt.Engine.Domain.Name
		snapshot := *report
		out := extraction.Call(ctx, "judge", "overall", func(ctx context.Context) (string, error) {
			return rt.Judge.Judge(ctx, domain, &snapshot)
		})
		if !out.Ok() {
			rt.Logger.WarnContext(ctx, "judge failed", "error", out.Err)
			return s, nil
		}

		report.Extras.AIOverallComment = out.Value
		return s.Set(KeyReport, report), nil
	})
}

// FinalizeNode stamps the package id onto the report.
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		sub, err := get[Submission](s, KeySubmission)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}
		report, err := get[*aggregate.Report](s, KeyReport)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		report.PackageID = sub.PackageID
		return s.Set(KeyReport, report), nil
	})
}

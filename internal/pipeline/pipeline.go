// Package pipeline composes the asset parser, search orchestrator,
// scoring engine, and ranking engine into a single discovery run and
// multiplexes progress notifications onto an outbound event channel.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/codescoop/cpediscover/internal/asset"
	"github.com/codescoop/cpediscover/internal/cpe"
	"github.com/codescoop/cpediscover/internal/ranking"
	"github.com/codescoop/cpediscover/internal/scoring"
	"github.com/codescoop/cpediscover/internal/search"
)

// Phase is one of the ordered stages a pipeline run passes through.
type Phase string

const (
	PhaseParsing   Phase = "parsing"
	PhaseSearching Phase = "searching"
	PhaseScoring   Phase = "scoring"
	PhaseRanking   Phase = "ranking"
	PhaseCompleted Phase = "completed"
	PhaseError     Phase = "error"
)

// EventKind tags a ProgressEvent as ongoing, terminal-success, or
// terminal-failure.
type EventKind string

const (
	KindProgress  EventKind = "progress"
	KindCompleted EventKind = "completed"
	KindError     EventKind = "error"
)

// CompletedPayload is attached to the terminal completed event.
type CompletedPayload struct {
	Parsed     *asset.ParsedAsset
	Candidates []ranking.Candidate
	Count      int
	TotalFound int
}

// ProgressEvent is one entry in the ordered event stream a Run
// produces. Payload is nil for every event except the terminal
// completed one.
type ProgressEvent struct {
	Kind    EventKind
	Phase   Phase
	Message string
	Payload *CompletedPayload
}

// Deps are the components a Pipeline composes. All fields except Log
// are required; a nil Log falls back to the logrus standard logger.
type Deps struct {
	Parser       *asset.Parser
	NarrowTarget int
	Searcher     search.KeywordSearcher
	Scorer       *scoring.Engine
	Log          *logrus.Entry
}

// Pipeline runs discovery requests. It holds no per-request state;
// each call to Run is independent and safe to invoke concurrently.
type Pipeline struct {
	deps Deps
}

// New builds a Pipeline from its dependencies.
func New(deps Deps) *Pipeline {
	if deps.Log == nil {
		deps.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{deps: deps}
}

// Run executes one discovery request and returns a channel of ordered
// progress events. The channel is bounded (capacity 8); if the
// consumer doesn't drain it, the producing goroutine blocks rather
// than dropping events. The channel closes after the terminal
// completed or error event. Cancelling ctx aborts at the next
// suspension point and emits a terminal error event.
func (p *Pipeline) Run(ctx context.Context, assetName string, topN int) <-chan ProgressEvent {
	events := make(chan ProgressEvent, 8)
	requestID := uuid.NewString()
	log := p.deps.Log.WithField("request_id", requestID)

	go func() {
		defer close(events)
		p.execute(ctx, assetName, topN, events, log)
	}()

	return events
}

func (p *Pipeline) execute(ctx context.Context, assetName string, topN int, events chan<- ProgressEvent, log *logrus.Entry) {
	aborted := false
	send := func(e ProgressEvent) bool {
		if aborted {
			return false
		}
		select {
		case events <- e:
			return true
		case <-ctx.Done():
			aborted = true
			select {
			case events <- ProgressEvent{Kind: KindError, Phase: e.Phase, Message: "cancelled"}:
			default:
			}
			return false
		}
	}

	if ctx.Err() != nil {
		events <- ProgressEvent{Kind: KindError, Phase: PhaseParsing, Message: "cancelled before parsing"}
		return
	}
	if !send(ProgressEvent{Kind: KindProgress, Phase: PhaseParsing, Message: "Parsing asset name…"}) {
		return
	}

	parsed := p.deps.Parser.Parse(assetName)
	log.WithFields(logrus.Fields{
		"vendor":  strVal(parsed.Vendor),
		"product": strVal(parsed.Product),
		"version": strVal(parsed.Version),
	}).Debug("pipeline: asset parsed")

	orchestrator := search.New(p.deps.Searcher, p.deps.NarrowTarget)
	orchestrator.OnQuery(func(query string, count int) {
		send(ProgressEvent{
			Kind:    KindProgress,
			Phase:   PhaseSearching,
			Message: fmt.Sprintf("Searching %q — %d result(s) so far", query, count),
		})
	})

	outcome, err := orchestrator.Narrow(ctx, parsed)
	if err != nil {
		if ctx.Err() != nil {
			send(ProgressEvent{Kind: KindError, Phase: PhaseSearching, Message: "search cancelled"})
			return
		}
		send(ProgressEvent{Kind: KindError, Phase: PhaseSearching, Message: err.Error()})
		return
	}
	for _, w := range outcome.Warnings {
		log.WithField("warning", w.Message).Warn("pipeline: search narrowing degraded")
		if !send(ProgressEvent{Kind: KindProgress, Phase: PhaseSearching, Message: w.Message}) {
			return
		}
	}
	totalFound := len(outcome.Records)

	if !send(ProgressEvent{
		Kind:    KindProgress,
		Phase:   PhaseScoring,
		Message: fmt.Sprintf("Scoring %d candidates…", len(outcome.Records)),
	}) {
		return
	}

	candidates := make([]ranking.Candidate, 0, len(outcome.Records))
	for _, record := range outcome.Records {
		if ctx.Err() != nil {
			send(ProgressEvent{Kind: KindError, Phase: PhaseScoring, Message: "cancelled during scoring"})
			return
		}
		deconstructed := cpe.Deconstruct(record.CPEName)
		breakdown, score := p.deps.Scorer.Score(parsed, deconstructed)
		candidates = append(candidates, ranking.Candidate{
			CPEName:       record.CPEName,
			CPENameID:     record.CPENameID,
			Title:         record.Title,
			Deprecated:    record.Deprecated,
			Deconstructed: deconstructed,
			Breakdown:     breakdown,
			Score:         score,
		})
	}

	ranked := ranking.Rank(candidates, topN)

	send(ProgressEvent{
		Kind:    KindCompleted,
		Phase:   PhaseRanking,
		Message: fmt.Sprintf("Top %d selected", len(ranked)),
		Payload: &CompletedPayload{
			Parsed:     parsed,
			Candidates: ranked,
			Count:      len(ranked),
			TotalFound: totalFound,
		},
	})
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package rank

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/metric"
	"github.com/veridex/tagrank/storage"
)

// Aggregation modes for combining a parent's chunk scores.
const (
	AggregationMin = "min"
	AggregationMax = "max"
)

// Ranker lifts chunk-level matches on a query record to parent-level
// matches and resolves parents against a record store.
type Ranker struct {
	records        storage.RecordStore
	metricName     string
	aggregation    string
	lowerIsBetter  *bool
	resolveTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithMetric sets the metric name whose scores are read and written.
// Matches under a different metric are ignored. Default is "cosine".
func WithMetric(name string) Option {
	return func(r *Ranker) error {
		r.metricName = name
		return nil
	}
}

// WithAggregation selects "min" or "max" aggregation of a parent's chunk
// scores. The default follows the metric's polarity so that the
// best-matching chunk dominates: "min" for distance metrics, "max" for
// similarity metrics.
func WithAggregation(mode string) Option {
	return func(r *Ranker) error {
		if mode != AggregationMin && mode != AggregationMax {
			return ErrUnknownAggregation
		}
		r.aggregation = mode
		return nil
	}
}

// WithPolarity overrides the sort direction derived from the metric name.
// When lowerIsBetter is true parents are ordered ascending by score.
func WithPolarity(lowerIsBetter bool) Option {
	return func(r *Ranker) error {
		r.lowerIsBetter = &lowerIsBetter
		return nil
	}
}

// WithResolveTimeout bounds the resolution phase of RankAndResolve.
// Lookups past the deadline are reported as resolution failures.
// Zero means no deadline beyond the caller's context.
func WithResolveTimeout(d time.Duration) Option {
	return func(r *Ranker) error {
		r.resolveTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRanker creates a new ranker backed by the given record store.
func NewRanker(records storage.RecordStore, opts ...Option) (*Ranker, error) {
	if records == nil {
		return nil, ErrRecordStoreRequired
	}

	r := &Ranker{
		records:    records,
		metricName: metric.Cosine,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.lowerIsBetter == nil {
		lower := metric.LowerIsBetter(r.metricName)
		r.lowerIsBetter = &lower
	}
	if r.aggregation == "" {
		if *r.lowerIsBetter {
			r.aggregation = AggregationMin
		} else {
			r.aggregation = AggregationMax
		}
	}

	return r, nil
}

// Rank replaces the query's chunk-level match list with one aggregated
// match per distinct parent, ordered best first. A match without a parent
// reference counts as its own parent, so ranking an already ranked query
// is a no-op. An empty match list stays empty.
func (r *Ranker) Rank(ctx context.Context, query *core.Record) error {
	return r.RankWithMonitor(ctx, query, nil)
}

// RankWithMonitor is Rank with monitoring callbacks at each stage.
func (r *Ranker) RankWithMonitor(ctx context.Context, query *core.Record, monitor RankMonitor) error {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if query == nil {
		return ErrNilQuery
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	monitor.Start(query)

	// 1. Collect scores into per-parent groups, keeping first-seen order
	// so that equal-score parents rank deterministically.
	groups := make(map[core.ID][]float32)
	var order []core.ID
	for _, match := range query.Matches {
		if match.Metric != "" && match.Metric != r.metricName {
			r.logger.Debug("skipping match under foreign metric",
				"target", match.TargetId, "metric", match.Metric)
			continue
		}
		parent := match.ParentId
		if parent == "" {
			parent = match.TargetId
		}
		if _, seen := groups[parent]; !seen {
			order = append(order, parent)
		}
		groups[parent] = append(groups[parent], match.Score)
	}
	monitor.AfterCollect(order)

	// 2. Aggregate each group to a single representative score.
	// 3. Rerank: one match per parent, best first.
	reranked := make([]core.Match, 0, len(order))
	for _, parent := range order {
		reranked = append(reranked, core.Match{
			TargetId: parent,
			Metric:   r.metricName,
			Score:    r.aggregate(groups[parent]),
		})
	}

	lower := *r.lowerIsBetter
	slices.SortStableFunc(reranked, func(a, b core.Match) int {
		switch {
		case a.Score < b.Score:
			if lower {
				return -1
			}
			return 1
		case a.Score > b.Score:
			if lower {
				return 1
			}
			return -1
		default:
			return 0
		}
	})
	monitor.AfterRerank(reranked)

	// 4. Replace: the chunk-level list is gone after this point.
	query.Matches = reranked
	monitor.Finish(query.Matches)

	return nil
}

func (r *Ranker) aggregate(scores []float32) float32 {
	agg := scores[0]
	for _, s := range scores[1:] {
		if (r.aggregation == AggregationMin && s < agg) ||
			(r.aggregation == AggregationMax && s > agg) {
			agg = s
		}
	}
	return agg
}

// ResolutionFailure records a parent identifier that could not be
// resolved, together with the lookup error.
type ResolutionFailure struct {
	Id  core.ID
	Err error
}

// ResolveReport summarizes the resolution phase of RankAndResolve.
type ResolveReport struct {
	Resolved int
	Failed   []ResolutionFailure
}

// AllResolved reports whether every parent lookup succeeded.
func (r *ResolveReport) AllResolved() bool {
	return len(r.Failed) == 0
}

// RankAndResolve ranks the query and then resolves each parent match to
// its full record. Failed lookups keep their match entry, with identity
// and score intact but no record payload, and are listed in the report.
func (r *Ranker) RankAndResolve(ctx context.Context, query *core.Record) (*ResolveReport, error) {
	return r.RankAndResolveWithMonitor(ctx, query, nil)
}

// RankAndResolveWithMonitor is RankAndResolve with monitoring callbacks.
func (r *Ranker) RankAndResolveWithMonitor(ctx context.Context, query *core.Record, monitor RankMonitor) (*ResolveReport, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := r.RankWithMonitor(ctx, query, monitor); err != nil {
		return nil, err
	}

	resolveCtx := ctx
	if r.resolveTimeout > 0 {
		var cancel context.CancelFunc
		resolveCtx, cancel = context.WithTimeout(ctx, r.resolveTimeout)
		defer cancel()
	}

	report := &ResolveReport{}
	for i := range query.Matches {
		id := query.Matches[i].TargetId
		if err := resolveCtx.Err(); err != nil {
			report.Failed = append(report.Failed, ResolutionFailure{Id: id, Err: err})
			monitor.ResolutionFailed(id, err)
			continue
		}
		record, err := r.records.GetRecord(resolveCtx, id)
		if err != nil {
			r.logger.Warn("failed to resolve parent record", "parent", id, "err", err)
			report.Failed = append(report.Failed, ResolutionFailure{Id: id, Err: err})
			monitor.ResolutionFailed(id, err)
			continue
		}
		// The stored copy never overwrites the match's identity or score.
		query.Matches[i].Record = record
		report.Resolved++
	}

	return report, nil
}

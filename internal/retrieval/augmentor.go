package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var augmentorTracer = otel.Tracer("ragchat.retrieval.augmentor")

// RetrieverFailure records one retriever failing during a degraded turn.
type RetrieverFailure struct {
	ID  string
	Err error
}

// Augmentation is the merged evidence for one query.
type Augmentation struct {
	// Results is the deduplicated evidence, table declaration order first,
	// each retriever's own ranking preserved within its block.
	Results []Result

	// Decision is the routing decision that produced the results.
	Decision Decision

	// Failures lists retrievers that failed while at least one succeeded.
	// Empty on a clean turn.
	Failures []RetrieverFailure
}

// Augmentor runs the retrieval stage of a turn: route, fan out to the
// selected retrievers concurrently, merge deterministically.
type Augmentor struct {
	router Router
	table  Table
	logger *zap.Logger
}

// NewAugmentor creates an Augmentor over a router and its table.
func NewAugmentor(router Router, table Table, logger *zap.Logger) (*Augmentor, error) {
	if router == nil {
		return nil, fmt.Errorf("%w: router is required", ErrInvalidConfig)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Augmentor{router: router, table: table, logger: logger}, nil
}

// Augment assembles evidence for the query. All selected retrievers failing
// returns ErrAugmentationFailed; a partial failure returns the surviving
// evidence with Failures populated.
func (a *Augmentor) Augment(ctx context.Context, query string) (Augmentation, error) {
	ctx, span := augmentorTracer.Start(ctx, "Augmentor.Augment")
	defer span.End()

	decision, err := a.router.Route(ctx, query)
	if err != nil || len(decision.IDs) == 0 {
		// Routers degrade internally; this is belt and braces.
		a.logger.Warn("router returned no usable decision, using all routes", zap.Error(err))
		decision = Decision{IDs: a.table.IDs(), Rationale: "fallback: router returned nothing"}
	}
	selected := a.selectRoutes(decision.IDs)
	if len(selected) == 0 {
		// A router may hand back ids the table does not know.
		a.logger.Warn("decision matched no routes, using all routes",
			zap.Strings("ids", decision.IDs))
		decision = Decision{IDs: a.table.IDs(), Rationale: "fallback: decision matched no routes"}
		selected = a.selectRoutes(decision.IDs)
	}
	span.SetAttributes(attribute.StringSlice("routes", decision.IDs))

	// Fan out with results slotted by position so the merge applies table
	// declaration order, not completion order.
	resultSets := make([][]Result, len(selected))
	errs := make([]error, len(selected))

	var wg sync.WaitGroup
	for i, route := range selected {
		wg.Add(1)
		go func(i int, route Route) {
			defer wg.Done()
			resultSets[i], errs[i] = route.Retriever.Retrieve(ctx, query)
		}(i, route)
	}
	wg.Wait()

	var failures []RetrieverFailure
	var failed []error
	for i, err := range errs {
		if err != nil {
			failures = append(failures, RetrieverFailure{ID: selected[i].ID, Err: err})
			failed = append(failed, fmt.Errorf("%s: %w", selected[i].ID, err))
		}
	}

	if len(failed) == len(selected) {
		err := fmt.Errorf("%w: %w", ErrAugmentationFailed, errors.Join(failed...))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Augmentation{}, err
	}

	merged := mergeResults(resultSets)
	span.SetAttributes(attribute.Int("results", len(merged)))

	if len(failures) > 0 {
		for _, f := range failures {
			a.logger.Warn("retriever failed, continuing degraded",
				zap.String("route", f.ID),
				zap.Error(f.Err),
			)
		}
	}

	return Augmentation{Results: merged, Decision: decision, Failures: failures}, nil
}

// selectRoutes resolves decision ids against the table, keeping table order
// and dropping unknown ids.
func (a *Augmentor) selectRoutes(ids []string) []Route {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	var selected []Route
	for _, route := range a.table {
		if _, ok := wanted[route.ID]; ok {
			selected = append(selected, route)
		}
	}
	return selected
}

// mergeResults concatenates per-retriever result blocks in order and drops
// exact-text duplicates, first occurrence winning.
func mergeResults(resultSets [][]Result) []Result {
	var merged []Result
	seen := make(map[string]struct{})
	for _, set := range resultSets {
		for _, res := range set {
			if _, dup := seen[res.Text]; dup {
				continue
			}
			seen[res.Text] = struct{}{}
			merged = append(merged, res)
		}
	}
	return merged
}

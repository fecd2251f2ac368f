package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aaronlmathis/infrascope/internal/search"
	"github.com/aaronlmathis/infrascope/internal/telemetry"
)

// Service is the aggregation orchestrator: it validates the node, fans one
// query per requested metric out against the backend and normalizes the
// results. It holds no mutable state beyond the read-only catalog.
type Service struct {
	logger     *zap.Logger
	catalog    *Catalog
	validator  *NodeValidator
	interval   *IntervalCalculator
	dispatcher *QueryDispatcher
	normalizer *ResultNormalizer
}

// NewService creates a new aggregation service.
func NewService(logger *zap.Logger, client search.Client, catalog *Catalog) *Service {
	return &Service{
		logger:     logger,
		catalog:    catalog,
		validator:  NewNodeValidator(logger, client),
		interval:   NewIntervalCalculator(logger, client),
		dispatcher: NewQueryDispatcher(logger, client),
		normalizer: NewResultNormalizer(catalog),
	}
}

// resolvedMetric pairs a requested metric id with its catalog builder.
type resolvedMetric struct {
	id    MetricID
	build ModelBuilder
}

// GetMetrics aggregates the requested metrics for one node. The whole call is
// all-or-nothing: the first failure is returned and no partial results are
// ever emitted. Result ordering follows query completion, not input order.
func (s *Service) GetMetrics(ctx context.Context, req MetricRequest) ([]MetricSeriesResult, error) {
	start := time.Now()
	logger := s.logger.With(
		zap.String("aggregationId", uuid.New().String()),
		zap.String("nodeType", string(req.NodeType)),
		zap.String("nodeId", req.NodeIDs.NodeID))

	results, err := s.getMetrics(ctx, logger, req)
	telemetry.RecordAggregation(string(req.NodeType), err == nil, time.Since(start))
	if err != nil {
		logger.Warn("Metric aggregation failed", zap.Error(err))
		return nil, err
	}

	logger.Debug("Metric aggregation completed",
		zap.Int("requested", len(req.Metrics)),
		zap.Int("results", len(results)),
		zap.Duration("elapsed", time.Since(start)))

	return results, nil
}

func (s *Service) getMetrics(ctx context.Context, logger *zap.Logger, req MetricRequest) ([]MetricSeriesResult, error) {
	if err := req.Timerange.Validate(); err != nil {
		return nil, newConfigurationError("%v", err)
	}

	// Metric alias first for metric lookups, log alias first for interval
	// probing: the leading alias wins on conflicting field definitions.
	metricIndex := req.Source.MetricAlias + "," + req.Source.LogAlias
	probeIndex := req.Source.LogAlias + "," + req.Source.MetricAlias

	// Resolve every metric at the boundary before touching the backend.
	// An unknown id or an unsatisfiable cloud-scoped model rejects the
	// whole request without any network call.
	resolved := make([]resolvedMetric, 0, len(req.Metrics))
	for _, id := range req.Metrics {
		build, err := s.catalog.Lookup(req.NodeType, id)
		if err != nil {
			return nil, err
		}
		if model := build(ModelOptions{}); model.Scope == ScopeCloud && req.NodeIDs.CloudID == "" {
			return nil, newModelRequirementError(id, req.NodeType)
		}
		resolved = append(resolved, resolvedMetric{id: id, build: build})
	}

	exists, err := s.validator.Exists(ctx, metricIndex, req.Source.Fields.ID, req.NodeIDs.NodeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, newNodeNotFoundError(req.NodeIDs.NodeID, metricIndex)
	}

	// Fan out one task per metric. The group context cancels siblings as
	// soon as one task fails, so in-flight backend work is abandoned
	// cooperatively rather than awaited.
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	results := make([]MetricSeriesResult, 0, len(resolved))

	for _, rm := range resolved {
		rm := rm
		g.Go(func() error {
			normalized, err := s.collectMetric(gctx, req, probeIndex, rm, ModelOptions{
				IndexPattern: metricIndex,
				TimeField:    req.Source.Fields.Timestamp,
				Interval:     req.Timerange.Interval,
			})
			if err != nil {
				return err
			}

			mu.Lock()
			results = append(results, normalized...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("All metric queries completed", zap.Int("metrics", len(resolved)))
	return results, nil
}

// collectMetric builds, tunes, dispatches and normalizes one metric query.
func (s *Service) collectMetric(ctx context.Context, req MetricRequest, probeIndex string, rm resolvedMetric, opts ModelOptions) ([]MetricSeriesResult, error) {
	model := rm.build(opts)

	interval, err := s.interval.Calculate(ctx, probeIndex, req.Source.Fields.Timestamp, req.Timerange, model.Requires)
	if err != nil {
		return nil, err
	}
	if interval != "" {
		model.Interval = interval
	}

	filter := search.TermFilter{Field: req.Source.Fields.ID, Value: req.NodeIDs.NodeID}
	if model.Scope == ScopeCloud {
		filter = search.TermFilter{Field: model.MatchField, Value: req.NodeIDs.CloudID}
	}

	raw, err := s.dispatcher.Dispatch(ctx, model, req.Timerange, []search.TermFilter{filter})
	if err != nil {
		return nil, err
	}

	return s.normalizer.Normalize(rm.id, raw)
}

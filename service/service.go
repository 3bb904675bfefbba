// Package service is the external boundary of the propagation service:
// single-shot, handle-based, and batch propagation over two-line element
// sets. It composes input validation, the handle registry, and the batch
// pool, and carries the logging/metrics/tracing instrumentation so the
// packages underneath stay pure.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/propagation-service/core"
	"github.com/signalsfoundry/propagation-service/internal/logging"
	"github.com/signalsfoundry/propagation-service/internal/observability"
	"github.com/signalsfoundry/propagation-service/model"
	"github.com/signalsfoundry/propagation-service/registry"
	"github.com/signalsfoundry/propagation-service/tle"
)

// Config controls service-wide behaviour.
type Config struct {
	// Workers sizes the batch worker pool. Zero or less selects the
	// available hardware parallelism; one forces sequential execution.
	Workers int
	// MaxHandles caps the number of live satellite handles. Zero means
	// unlimited.
	MaxHandles int
}

// Service implements the propagation operations. Safe for concurrent use.
type Service struct {
	prop    *core.Propagator
	pool    *core.BatchPool
	reg     *registry.Registry
	log     logging.Logger
	metrics *observability.Collector
	tracer  trace.Tracer
}

// New constructs a Service. log and metrics may be nil.
func New(cfg Config, log logging.Logger, metrics *observability.Collector) *Service {
	if log == nil {
		log = logging.Noop()
	}
	prop := core.NewPropagator()
	return &Service{
		prop:    prop,
		pool:    core.NewBatchPool(cfg.Workers, prop, log),
		reg:     registry.New(cfg.MaxHandles, log),
		log:     log,
		metrics: metrics,
		tracer:  otel.Tracer("propagation-service"),
	}
}

// PropagateOnce decodes the element lines and propagates once at tsince
// seconds from epoch. Stateless: nothing is retained between calls.
func (s *Service) PropagateOnce(ctx context.Context, line1, line2 string, tsince float64) (model.StateVector, error) {
	ctx, log, done := s.begin(ctx, "propagate_once")
	var err error
	defer func() { done(err) }()

	if err = tle.ValidateLines(line1, line2); err != nil {
		return model.StateVector{}, err
	}

	var el *core.Elements
	el, err = core.Initialize(line1, line2)
	if err != nil {
		return model.StateVector{}, err
	}

	var st model.StateVector
	st, err = s.prop.Propagate(el, tsince)
	if err != nil {
		log.Debug(ctx, "propagation failed",
			logging.Int("catalog_number", el.Info().CatalogNumber),
			logging.Float64("tsince_s", tsince),
			logging.Err(err),
		)
		return model.StateVector{}, err
	}
	return st, nil
}

// CreateHandle initializes the element lines and registers them under a new
// opaque handle id for repeated propagation.
func (s *Service) CreateHandle(ctx context.Context, line1, line2 string) (string, error) {
	ctx, log, done := s.begin(ctx, "create_handle")
	var err error
	defer func() { done(err) }()

	if err = tle.ValidateLines(line1, line2); err != nil {
		return "", err
	}

	var id string
	id, err = s.reg.Create(line1, line2)
	if err != nil {
		return "", err
	}
	s.metrics.SetLiveHandles(s.reg.Len())
	log.Debug(ctx, "handle created", logging.String("handle_id", id))
	return id, nil
}

// PropagateHandle propagates a previously created handle at tsince seconds
// from its element epoch.
func (s *Service) PropagateHandle(ctx context.Context, id string, tsince float64) (model.StateVector, error) {
	_, _, done := s.begin(ctx, "propagate_handle")
	var err error
	defer func() { done(err) }()

	var el *core.Elements
	el, err = s.reg.Get(id)
	if err != nil {
		return model.StateVector{}, err
	}

	var st model.StateVector
	st, err = s.prop.Propagate(el, tsince)
	return st, err
}

// PropagateBatch decodes the element lines once and propagates every time
// offset in times across the worker pool. The returned slice has one
// outcome per input offset, in input order; per-sample failures are
// recorded in their outcome and never affect sibling samples. The call
// fails outright only when validation or initialization fails.
func (s *Service) PropagateBatch(ctx context.Context, line1, line2 string, times []float64) ([]model.Outcome, error) {
	ctx, _, done := s.begin(ctx, "propagate_batch")
	var err error
	defer func() { done(err) }()

	if err = tle.ValidateLines(line1, line2); err != nil {
		return nil, err
	}
	if err = tle.ValidateBatchTimes(times); err != nil {
		return nil, err
	}

	var el *core.Elements
	el, err = core.Initialize(line1, line2)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBatchSize(len(times))
	return s.pool.PropagateBatch(ctx, el, times), nil
}

// HandleInfo returns a snapshot of the decoded element fields for id,
// including the original input lines byte-for-byte.
func (s *Service) HandleInfo(ctx context.Context, id string) (model.ElementSet, error) {
	_, _, done := s.begin(ctx, "handle_info")
	var err error
	defer func() { done(err) }()

	var info model.ElementSet
	info, err = s.reg.Info(id)
	return info, err
}

// ReleaseHandle destroys the handle's backing record. Releasing an unknown
// or already-released id reports registry.ErrHandleNotFound.
func (s *Service) ReleaseHandle(ctx context.Context, id string) error {
	ctx, log, done := s.begin(ctx, "release_handle")
	var err error
	defer func() { done(err) }()

	if err = s.reg.Release(id); err != nil {
		return err
	}
	s.metrics.SetLiveHandles(s.reg.Len())
	log.Debug(ctx, "handle released", logging.String("handle_id", id))
	return nil
}

// Handles reports the number of live handles.
func (s *Service) Handles() int { return s.reg.Len() }

// begin starts the per-operation instrumentation: request-scoped logger,
// a span, and a completion callback recording metrics with the result label.
func (s *Service) begin(ctx context.Context, op string) (context.Context, logging.Logger, func(error)) {
	ctx, log := logging.WithRequestLogger(ctx, s.log)
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	return ctx, log, func(err error) {
		result := resultLabel(err)
		span.SetAttributes(attribute.String("result", result))
		span.End()
		s.metrics.RecordRequest(op, result, time.Since(start))
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		validation *model.ValidationError
		initErr    *model.InitializationError
		propErr    *model.PropagationError
	)
	switch {
	case errors.As(err, &validation):
		return "validation_error"
	case errors.As(err, &initErr):
		return "initialization_error"
	case errors.As(err, &propErr):
		return "propagation_error"
	case errors.Is(err, registry.ErrHandleNotFound):
		return "not_found"
	case errors.Is(err, registry.ErrRegistryFull):
		return "allocation_error"
	default:
		return "error"
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"familymeter/internal/chart"
	"familymeter/internal/config"
	"familymeter/internal/family"
	"familymeter/internal/grouping"
	"familymeter/internal/infrastructure"
	"familymeter/internal/table"
)

// Result is the output of one pipeline run
type Result struct {
	Table    *table.Table     `json:"-"`
	People   []family.Person  `json:"people"`
	Groups   *grouping.Result `json:"groups"`
	Stats    family.Stats     `json:"stats"`
	Duration time.Duration    `json:"duration"`
}

// PipelineService loads, extracts and groups the measurement table
type PipelineService struct {
	source    config.SourceConfig
	registry  *grouping.Registry
	extractor *family.Extractor
	grouper   *grouping.Grouper
	renderer  *chart.Renderer
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	logger    *slog.Logger
}

// PipelineOption customizes a PipelineService
type PipelineOption func(*PipelineService)

// WithTracer sets the tracer used for stage spans
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(s *PipelineService) {
		s.tracer = tracer
	}
}

// WithMetrics sets the instruments recorded per run
func WithMetrics(metrics *infrastructure.PipelineMetrics) PipelineOption {
	return func(s *PipelineService) {
		s.metrics = metrics
	}
}

// NewPipelineService creates a pipeline from the application configuration
func NewPipelineService(cfg *config.Config, logger *slog.Logger, opts ...PipelineOption) (*PipelineService, error) {
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := grouping.NewRegistry(cfg.Groups)
	if err != nil {
		return nil, fmt.Errorf("failed to build group registry: %w", err)
	}

	s := &PipelineService{
		source:    cfg.Source,
		registry:  registry,
		extractor: family.NewExtractor(cfg.Source),
		grouper:   grouping.NewGrouper(registry),
		renderer:  chart.NewRenderer(cfg.Chart),
		tracer:    otel.Tracer(infrastructure.InstrumentationName),
		logger:    logger.With(slog.String("service", "pipeline")),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("PipelineService initialized",
		slog.String("source", cfg.Source.Path),
		slog.Int("groups", len(cfg.Groups)))

	return s, nil
}

// Registry returns the configured chart groups
func (s *PipelineService) Registry() *grouping.Registry {
	return s.registry
}

// Renderer returns the chart renderer built from configuration
func (s *PipelineService) Renderer() *chart.Renderer {
	return s.renderer
}

// SourcePath returns the measurement table location
func (s *PipelineService) SourcePath() string {
	return s.source.Path
}

// Run executes one independent pass over the source file
func (s *PipelineService) Run(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(attribute.String("source.path", s.source.Path)))
	defer span.End()

	start := time.Now()
	res, err := s.run(ctx)
	duration := time.Since(start)
	s.metrics.RecordRun(ctx, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("source", s.source.Path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return nil, err
	}

	res.Duration = duration
	s.metrics.RecordExtraction(ctx, res.Stats.People, res.Stats.SkippedRows, res.Stats.Observations, res.Stats.SkippedCells)
	span.SetAttributes(
		attribute.Int("pipeline.people", res.Stats.People),
		attribute.Int("pipeline.observations", res.Stats.Observations),
	)

	s.logger.InfoContext(ctx, "Pipeline run completed",
		slog.Int("rows", res.Stats.Rows),
		slog.Int("people", res.Stats.People),
		slog.Int("skipped_rows", res.Stats.SkippedRows),
		slog.Int("observations", res.Stats.Observations),
		slog.Int("skipped_cells", res.Stats.SkippedCells),
		slog.Duration("duration", duration))

	return res, nil
}

func (s *PipelineService) run(ctx context.Context) (*Result, error) {
	tbl, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	people, stats, err := s.extract(ctx, tbl)
	if err != nil {
		return nil, err
	}

	groups, err := s.group(ctx, people)
	if err != nil {
		return nil, err
	}

	return &Result{Table: tbl, People: people, Groups: groups, Stats: stats}, nil
}

func (s *PipelineService) load(ctx context.Context) (*table.Table, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.load")
	defer span.End()

	tbl, err := table.LoadFile(s.source.Path, table.Options{NAValues: s.source.NAValues})
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("table.columns", len(tbl.Columns)),
		attribute.Int("table.rows", len(tbl.Rows)),
	)
	s.logger.DebugContext(ctx, "Measurement table loaded",
		slog.Int("columns", len(tbl.Columns)),
		slog.Int("rows", len(tbl.Rows)))
	return tbl, nil
}

func (s *PipelineService) extract(ctx context.Context, tbl *table.Table) ([]family.Person, family.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.extract")
	defer span.End()

	people, stats, err := s.extractor.Extract(tbl)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, stats, err
	}

	if stats.SkippedRows > 0 {
		s.logger.DebugContext(ctx, "Incomplete rows skipped", slog.Int("skipped_rows", stats.SkippedRows))
	}
	return people, stats, nil
}

func (s *PipelineService) group(ctx context.Context, people []family.Person) (*grouping.Result, error) {
	ctx, span := s.tracer.Start(ctx, "pipeline.group")
	defer span.End()

	groups, err := s.grouper.Group(people)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("groups", len(groups.Groups)))
	return groups, nil
}

// Group runs the pipeline and returns the group with the given key
func (s *PipelineService) Group(ctx context.Context, key string) (*grouping.Group, error) {
	if _, ok := s.registry.Lookup(key); !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, key)
	}

	res, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}

	g, _ := res.Groups.Get(key)
	return g, nil
}

// Chart runs the pipeline and renders the group with the given key
func (s *PipelineService) Chart(ctx context.Context, key string, format chart.Format) ([]byte, error) {
	g, err := s.Group(ctx, key)
	if err != nil {
		return nil, err
	}

	_, span := s.tracer.Start(ctx, "pipeline.chart",
		trace.WithAttributes(attribute.String("group.key", key), attribute.String("chart.format", string(format))))
	defer span.End()

	return s.renderer.Render(g, format)
}

package http

import (
	"context"

	"familymeter/internal/chart"
	"familymeter/internal/grouping"
	"familymeter/internal/services"
)

// PipelineServiceInterface defines the pipeline operations the handlers use
type PipelineServiceInterface interface {
	Run(ctx context.Context) (*services.Result, error)
	Group(ctx context.Context, key string) (*grouping.Group, error)
	Chart(ctx context.Context, key string, format chart.Format) ([]byte, error)
	Registry() *grouping.Registry
	Renderer() *chart.Renderer
}

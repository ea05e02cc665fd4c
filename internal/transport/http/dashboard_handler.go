package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"familymeter/internal/chart"
	"familymeter/internal/config"
	apierrors "familymeter/internal/errors"
	"familymeter/internal/family"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// ChartView is one rendered group on the dashboard. SVG is empty for groups
// without observations.
type ChartView struct {
	Key   string
	Title string
	SVG   template.HTML
}

// DashboardView is the data passed to the dashboard template
type DashboardView struct {
	Title   string
	Charts  []ChartView
	Columns []string
	Rows    [][]string
	Stats   family.Stats
	Problem *apierrors.ProblemDetails
}

// DashboardHandler renders the single-page chart viewer
type DashboardHandler struct {
	service      PipelineServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service PipelineServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// ServeDashboard handles GET /
func (h *DashboardHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.build(r)
	if err != nil {
		problem := h.errorHandler.ErrorToProblem(err, r)
		h.logger.ErrorContext(r.Context(), "dashboard unavailable",
			slog.String("error", err.Error()),
			slog.Int("status", problem.Status))
		h.write(w, r, problem.Status, &DashboardView{Title: config.AppName, Problem: problem})
		return
	}
	h.write(w, r, http.StatusOK, view)
}

func (h *DashboardHandler) build(r *http.Request) (*DashboardView, error) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		return nil, err
	}

	renderer := h.service.Renderer()
	view := &DashboardView{
		Title:   config.AppName,
		Charts:  make([]ChartView, 0, len(res.Groups.Groups)),
		Columns: res.Table.Columns,
		Rows:    res.Table.Display(),
		Stats:   res.Stats,
	}

	for _, g := range res.Groups.Groups {
		cv := ChartView{Key: g.Key, Title: g.Title}
		svg, err := renderer.RenderSVG(g)
		switch {
		case errors.Is(err, chart.ErrNoSeries):
			h.logger.DebugContext(r.Context(), "group has nothing to draw", slog.String("group", g.Key))
		case err != nil:
			return nil, err
		default:
			// labels are escaped by the renderer
			cv.SVG = template.HTML(svg)
		}
		view.Charts = append(view.Charts, cv)
	}

	return view, nil
}

func (h *DashboardHandler) write(w http.ResponseWriter, r *http.Request, status int, view *DashboardView) {
	var buf bytes.Buffer
	if err := dashboardTemplate.ExecuteTemplate(&buf, "layout", view); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

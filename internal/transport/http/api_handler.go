package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"familymeter/internal/chart"
	apierrors "familymeter/internal/errors"
	"familymeter/internal/services"
)

type groupKeyCtx struct{}

// APIHandler serves pipeline results as JSON and charts
type APIHandler struct {
	service      PipelineServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAPIHandler creates a new API handler with RFC 7807 error handling
func NewAPIHandler(service PipelineServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *APIHandler {
	return &APIHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "api_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes
func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/groups", h.GetGroups)
	r.Route("/groups/{key}", func(r chi.Router) {
		r.Use(h.GroupCtx)
		r.Get("/", h.GetGroup)
		r.Get("/chart.svg", h.GetChart(chart.FormatSVG))
		r.Get("/chart.png", h.GetChart(chart.FormatPNG))
	})
	r.Get("/people", h.GetPeople)
	r.Get("/table", h.GetTable)
	r.Get("/stats", h.GetStats)

	return r
}

// GroupCtx rejects group keys that are not configured
func (h *APIHandler) GroupCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if _, ok := h.service.Registry().Lookup(key); !ok {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("group %s", key)))
			return
		}
		ctx := context.WithValue(r.Context(), groupKeyCtx{}, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func groupKey(r *http.Request) string {
	key, _ := r.Context().Value(groupKeyCtx{}).(string)
	return key
}

// GetGroups handles GET /api/groups
func (h *APIHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   res.Groups.Groups,
		"count":  len(res.Groups.Groups),
	})
}

// GetGroup handles GET /api/groups/{key}
func (h *APIHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Group(r.Context(), groupKey(r))
	if err != nil {
		h.handleGroupError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   g,
		"count":  len(g.Series),
	})
}

// GetChart handles GET /api/groups/{key}/chart.{svg,png}
func (h *APIHandler) GetChart(format chart.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := groupKey(r)

		img, err := h.service.Chart(r.Context(), key, format)
		if err != nil {
			h.handleGroupError(w, r, err)
			return
		}

		h.logger.DebugContext(r.Context(), "chart rendered",
			slog.String("group", key),
			slog.String("format", string(format)),
			slog.Int("bytes", len(img)))

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(img)
	}
}

func (h *APIHandler) handleGroupError(w http.ResponseWriter, r *http.Request, err error) {
	key := groupKey(r)
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError(fmt.Sprintf("group %s", key)))
	case errors.Is(err, chart.ErrNoSeries):
		h.errorHandler.HandleError(w, r, apierrors.EmptyGroupError(key))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// GetPeople handles GET /api/people
func (h *APIHandler) GetPeople(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   res.People,
		"count":  len(res.People),
	})
}

// TableResponse is the raw table with missing cells as empty strings
type TableResponse struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// GetTable handles GET /api/table
func (h *APIHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   TableResponse{Columns: res.Table.Columns, Rows: res.Table.Display()},
		"count":  len(res.Table.Rows),
	})
}

// GetStats handles GET /api/stats
func (h *APIHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	groups := make(map[string]int, len(res.Groups.Groups))
	for _, g := range res.Groups.Groups {
		groups[g.Key] = len(g.Series)
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"extraction":  res.Stats,
			"groups":      groups,
			"duration_ms": res.Duration.Milliseconds(),
		},
	})
}

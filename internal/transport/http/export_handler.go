package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "familymeter/internal/errors"
	"familymeter/internal/exporter"
)

// ExportHandler serves pipeline results as file downloads. Files are built
// per request and never stored.
type ExportHandler struct {
	service      PipelineServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service PipelineServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/table.xlsx", h.DownloadTable)
	r.Get("/observations.csv", h.DownloadObservations)
	return r
}

// DownloadTable handles GET /api/export/table.xlsx
func (h *ExportHandler) DownloadTable(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffered so a failed workbook still yields a problem response
	var buf bytes.Buffer
	if err := exporter.WriteTableXLSX(&buf, res.Table, "merania"); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("export table: %w", err))
		return
	}

	h.logger.InfoContext(r.Context(), "table exported",
		slog.String("format", "xlsx"),
		slog.Int("rows", len(res.Table.Rows)),
		slog.Int("bytes", buf.Len()))

	writeAttachment(w, "rodinny_merac.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// DownloadObservations handles GET /api/export/observations.csv
func (h *ExportHandler) DownloadObservations(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	cw := exporter.NewCSVWriter(&buf, exporter.WriteOptions{
		Headers:   exporter.ObservationHeaders,
		BOMPrefix: true,
	})
	if err := exporter.WriteObservationsCSV(cw, res.People); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("export observations: %w", err))
		return
	}

	h.logger.InfoContext(r.Context(), "observations exported",
		slog.String("format", "csv"),
		slog.Int("records", cw.Records()))

	writeAttachment(w, "observations.csv", "text/csv; charset=utf-8", buf.Bytes())
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

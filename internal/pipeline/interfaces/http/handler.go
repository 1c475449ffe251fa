package http

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	ingest "msb-report/internal/ingest/domain"
	"msb-report/internal/observability/metrics"
	pipelineapp "msb-report/internal/pipeline/application"
	reportinterfaces "msb-report/internal/report/interfaces"
)

const maxUploadBytes = 64 << 20

// SourceSpec names one configured source and how to parse its upload.
type SourceSpec struct {
	Name       string
	Descriptor ingest.SourceDescriptor
}

// ReportHandler accepts multipart CSV uploads and returns the report file.
type ReportHandler struct {
	pipeline *pipelineapp.Pipeline
	specs    []SourceSpec
	logger   *log.Logger
}

// NewReportHandler constructs a handler.
func NewReportHandler(pipeline *pipelineapp.Pipeline, specs []SourceSpec, logger *log.Logger) (*ReportHandler, error) {
	if pipeline == nil {
		return nil, errors.New("report handler: nil pipeline")
	}
	if len(specs) == 0 {
		return nil, errors.New("report handler: no source specs")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReportHandler{pipeline: pipeline, specs: specs, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/reports. Each multipart file field is named
// after a configured source; sources without an upload are skipped, matching
// the pipeline's partial-result semantics.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	var sources []pipelineapp.Source
	for _, spec := range h.specs {
		file, _, err := r.FormFile(spec.Name)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			http.Error(w, "unreadable upload: "+spec.Name, http.StatusBadRequest)
			return
		}
		sources = append(sources, pipelineapp.Source{Name: spec.Name, Descriptor: spec.Descriptor, Data: data})
	}
	if len(sources) == 0 {
		http.Error(w, "no source files uploaded", http.StatusBadRequest)
		return
	}

	result, err := h.pipeline.Run(r.Context(), sources)
	if err != nil {
		if errors.Is(err, pipelineapp.ErrNoUsableSources) {
			http.Error(w, "no source produced usable data", http.StatusUnprocessableEntity)
			return
		}
		h.logger.Printf("report run error: %v", err)
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		return
	}
	for _, source := range result.Sources {
		if source.Err != nil {
			h.logger.Printf("source %s failed: %v", source.Name, source.Err)
			continue
		}
		h.logger.Printf("source %s: rows=%d dropped=%d days=%d",
			source.Name, source.Report.RowsTotal, source.Report.RowsDropped, len(source.Aggregates))
	}

	switch r.URL.Query().Get("format") {
	case "", "xlsx":
		h.respond(w, "xlsx", func() ([]byte, error) { return reportinterfaces.BuildWorkbookXLSX(result.Workbook) },
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "report.xlsx")
	case "pdf":
		h.respond(w, "pdf", func() ([]byte, error) { return reportinterfaces.BuildSummaryPDF(result.Merged, result.HourlyProfile) },
			"application/pdf", "report.pdf")
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}

func (h *ReportHandler) respond(w http.ResponseWriter, format string, build func() ([]byte, error), contentType, filename string) {
	started := time.Now()
	data, err := build()
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		h.logger.Printf("report export error: %v", err)
		http.Error(w, "report export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(data)
}

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"msb-report/internal/auth"
	"msb-report/internal/config"
	"msb-report/internal/observability/metrics"
	pipelineapp "msb-report/internal/pipeline/application"
	pipelinehttp "msb-report/internal/pipeline/interfaces/http"
	reportapp "msb-report/internal/report/application"
	reportinterfaces "msb-report/internal/report/interfaces"
)

func main() {
	configPath := flag.String("config", getenvDefault("MSB_REPORT_CONFIG", "config.yaml"), "path to the yaml configuration")
	outPath := flag.String("out", "report.xlsx", "output workbook path for batch runs")
	pdfPath := flag.String("pdf", "", "optional summary PDF path for batch runs")
	serve := flag.Bool("serve", false, "run the HTTP upload service instead of a one-shot batch")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init()

	pipeline, err := pipelineapp.NewPipeline(pipelineapp.Options{
		MergeMode: cfg.MergeMode,
		Mode:      cfg.Mode,
		Report: reportapp.Options{
			TotalSheetName:        cfg.Sheets.Total,
			ApportioningSheetName: cfg.Sheets.Apportioning,
			TotalColumnName:       cfg.Sheets.TotalColumn,
			RoundDecimals:         cfg.RoundDecimals,
		},
	}, logger)
	if err != nil {
		logger.Fatalf("pipeline error: %v", err)
	}

	if *serve {
		runServer(cfg, pipeline, logger)
		return
	}
	runBatch(cfg, pipeline, *outPath, *pdfPath, logger)
}

func runBatch(cfg config.Config, pipeline *pipelineapp.Pipeline, outPath, pdfPath string, logger *log.Logger) {
	var sources []pipelineapp.Source
	for _, source := range cfg.Sources {
		if source.File == "" {
			logger.Fatalf("source %s: no file configured for batch run", source.Name)
		}
		data, err := os.ReadFile(source.File)
		if err != nil {
			logger.Printf("source %s unreadable, skipped: %v", source.Name, err)
			continue
		}
		sources = append(sources, pipelineapp.Source{Name: source.Name, Descriptor: source.Descriptor, Data: data})
	}

	result, err := pipeline.Run(context.Background(), sources)
	if err != nil {
		logger.Fatalf("run error: %v", err)
	}
	for _, source := range result.Sources {
		if source.Err != nil {
			logger.Printf("source %s failed: %v", source.Name, source.Err)
			continue
		}
		logger.Printf("source %s: rows=%d dropped=%d days=%d",
			source.Name, source.Report.RowsTotal, source.Report.RowsDropped, len(source.Aggregates))
	}

	data, err := reportinterfaces.BuildWorkbookXLSX(result.Workbook)
	if err != nil {
		logger.Fatalf("xlsx export error: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Fatalf("write %s: %v", outPath, err)
	}
	logger.Printf("wrote %s (%d days, merge mode %s)", outPath, len(result.Merged.Rows), result.Merged.Mode)

	if pdfPath != "" {
		summary, err := reportinterfaces.BuildSummaryPDF(result.Merged, result.HourlyProfile)
		if err != nil {
			logger.Fatalf("pdf export error: %v", err)
		}
		if err := os.WriteFile(pdfPath, summary, 0o644); err != nil {
			logger.Fatalf("write %s: %v", pdfPath, err)
		}
		logger.Printf("wrote %s", pdfPath)
	}
}

func runServer(cfg config.Config, pipeline *pipelineapp.Pipeline, logger *log.Logger) {
	specs := make([]pipelinehttp.SourceSpec, 0, len(cfg.Sources))
	for _, source := range cfg.Sources {
		specs = append(specs, pipelinehttp.SourceSpec{Name: source.Name, Descriptor: source.Descriptor})
	}
	reportHandler, err := pipelinehttp.NewReportHandler(pipeline, specs, logger)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), []string{"/healthz", "/metrics"})
	server := &http.Server{Addr: cfg.ListenAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.ListenAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

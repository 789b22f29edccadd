package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldaudit/internal/db"
	"fieldaudit/internal/export"
	"fieldaudit/internal/handlers"
	"fieldaudit/internal/handlers/api"
	"fieldaudit/internal/review"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(ctx context.Context, database *db.DB) error {
	recorder := review.NewRecorder(database)

	// Google Sheets export is optional: without credentials the endpoint
	// reports the feature as disabled and everything else runs.
	var sheets *export.SheetsExporter
	if s.Cfg.SheetsEnabled() {
		var err error
		sheets, err = export.NewSheetsExporter(ctx, s.Cfg.SheetsCredentialsB64)
		if err != nil {
			return err
		}
	} else {
		log.Println("Google Sheets export is disabled. Set GSHEETS_SERVICE_ACCOUNT_JSON_B64 to enable.")
	}

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(database, s.Cfg, recorder)
	exportHandler := handlers.NewExportHandler(database, s.Cfg, recorder, sheets)
	healthHandler := handlers.NewHealthHandler(database)
	fieldAPI := api.NewFieldHandler(database)
	listingAPI := api.NewListingHandler(recorder)
	summaryAPI := api.NewSummaryHandler(database, s.Cfg)

	// Pages and form actions
	s.App.Get("/", pageHandler.Index)
	s.App.Get("/summary", pageHandler.Summary)
	s.App.Get("/field/:id", pageHandler.FieldDetail)
	s.App.Post("/field/:id/bulk_mark_empty", pageHandler.BulkMarkEmpty)

	// JSON API
	s.App.Get("/api/fields", fieldAPI.Search)
	s.App.Post("/api/batches/:batch/listings", listingAPI.Create)
	s.App.Get("/api/batches/:batch/summary", summaryAPI.Batch)

	// Import / export
	s.App.Get("/export/observations.csv", exportHandler.ObservationsCSV)
	s.App.Get("/import/observations", exportHandler.ImportPage)
	s.App.Post("/import/observations", exportHandler.Import)
	s.App.Get("/export/google_sheet_symbols", exportHandler.GoogleSheetSymbols)

	// Operational endpoints
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"fieldaudit/internal/config"
	"fieldaudit/internal/db"
	"fieldaudit/internal/metrics"
	"fieldaudit/internal/review"
	"fieldaudit/internal/testutil"
)

// newTestApp wires the JSON API routes onto a bare fiber app over the test
// database, mirroring the production route registration.
func newTestApp(database *db.DB) *fiber.App {
	metrics.Init(database)

	cfg := &config.Config{RemoveEmptyMin: 6, RemoveMinSample: 10}
	recorder := review.NewRecorder(database)

	app := fiber.New()
	app.Get("/api/fields", NewFieldHandler(database).Search)
	app.Post("/api/batches/:batch/listings", NewListingHandler(recorder).Create)
	app.Get("/api/batches/:batch/summary", NewSummaryHandler(database, cfg).Batch)
	return app
}

func TestListingCreate(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newTestApp(database)

	body := `{"listing_id":"MLS-001","analyst":"alice","observations":[{"field_text":"Garage Type","filled":true},{"field_text":"Lot Size","filled":false}]}`
	req, _ := http.NewRequest("POST", "/api/batches/default/listings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, raw)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			ListingDBID string `json:"listing_db_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Status != "ok" {
		t.Errorf("status = %q, want %q", envelope.Status, "ok")
	}
	if envelope.Data.ListingDBID == "" {
		t.Error("response did not include the listing id")
	}

	stats, err := database.Stats(req.Context())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Observations != 2 {
		t.Errorf("observations = %d, want 2", stats.Observations)
	}
}

func TestListingCreate_BlankListingID(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newTestApp(database)

	req, _ := http.NewRequest("POST", "/api/batches/default/listings", strings.NewReader(`{"listing_id":"  "}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Status != "error" || envelope.Error != "listing_id required" {
		t.Errorf("unexpected error envelope: %+v", envelope)
	}
}

func TestBatchSummary(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newTestApp(database)

	seed := `{"listing_id":"MLS-001","observations":[{"field_text":"Garage Type","filled":true},{"field_text":"Lot Size","filled":false}]}`
	req, _ := http.NewRequest("POST", "/api/batches/default/listings", strings.NewReader(seed))
	req.Header.Set("Content-Type", "application/json")
	if resp, err := app.Test(req); err != nil || resp.StatusCode != 200 {
		t.Fatalf("seed request failed: err=%v", err)
	}

	req2, _ := http.NewRequest("GET", "/api/batches/default/summary", nil)
	resp, err := app.Test(req2)
	if err != nil {
		t.Fatalf("summary request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   []struct {
			Canonical  string  `json:"canonical"`
			Filled     int     `json:"filled"`
			Empty      int     `json:"empty"`
			Sample     int     `json:"sample"`
			EmptyRatio float64 `json:"empty_ratio"`
			RemoveCand bool    `json:"remove_candidate"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("summary rows = %d, want 2", len(envelope.Data))
	}
	for _, row := range envelope.Data {
		if row.Sample != 1 {
			t.Errorf("%s: sample = %d, want 1", row.Canonical, row.Sample)
		}
		if row.RemoveCand {
			t.Errorf("%s: remove_candidate = true below thresholds", row.Canonical)
		}
	}
}

func TestFieldSearch(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	app := newTestApp(database)

	for _, name := range []string{"Garage Type", "Garage Size", "Lot Size"} {
		if _, err := database.ResolveField(context.Background(), name); err != nil {
			t.Fatalf("ResolveField(%q) error = %v", name, err)
		}
	}

	req, _ := http.NewRequest("GET", "/api/fields?q=garage", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   []struct {
			Canonical string `json:"canonical"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Errorf("search results = %d, want 2", len(envelope.Data))
	}
}

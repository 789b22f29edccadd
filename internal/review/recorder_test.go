package review

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"fieldaudit/internal/db"
	"fieldaudit/internal/export"
	"fieldaudit/internal/testutil"
)

func TestRecordListing_SkipsBlankFields(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	observations := []ObservationInput{
		{FieldText: "Garage Type", Filled: true},
		{FieldText: "   ", Filled: true},
		{FieldText: "Lot Size", Filled: false},
		{FieldText: "", Filled: false},
	}

	listing, err := recorder.RecordListing(ctx, "default", "MLS-001", observations, "alice")
	if err != nil {
		t.Fatalf("RecordListing() error = %v", err)
	}
	if listing.ListingIDText != "MLS-001" {
		t.Errorf("listing text = %q, want %q", listing.ListingIDText, "MLS-001")
	}

	stats, err := database.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	// 4 inputs, 2 blank: exactly 2 observations and 1 listing.
	if stats.Observations != 2 {
		t.Errorf("observations = %d, want 2", stats.Observations)
	}
	if stats.Listings != 1 {
		t.Errorf("listings = %d, want 1", stats.Listings)
	}
}

func TestRecordListing_BlankListingID(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	recorder := NewRecorder(database)

	_, err := recorder.RecordListing(context.Background(), "default", "   ", nil, "alice")
	if !errors.Is(err, db.ErrBlankListingID) {
		t.Errorf("RecordListing() error = %v, want ErrBlankListingID", err)
	}
}

func TestRecordListing_ReusesListing(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	first, err := recorder.RecordListing(ctx, "default", "MLS-001",
		[]ObservationInput{{FieldText: "Garage Type", Filled: true}}, "alice")
	if err != nil {
		t.Fatalf("RecordListing() error = %v", err)
	}

	second, err := recorder.RecordListing(ctx, "default", "MLS-001",
		[]ObservationInput{{FieldText: "Lot Size", Filled: false}}, "bob")
	if err != nil {
		t.Fatalf("RecordListing() second call error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("RecordListing() created a duplicate listing: %v vs %v", first.ID, second.ID)
	}
}

func TestRecordListing_DefaultsAnalyst(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	if _, err := recorder.RecordListing(ctx, "default", "MLS-001",
		[]ObservationInput{{FieldText: "Garage Type", Filled: true}}, ""); err != nil {
		t.Fatalf("RecordListing() error = %v", err)
	}

	rows, err := database.ListObservationRows(ctx)
	if err != nil {
		t.Fatalf("ListObservationRows() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Analyst != "unknown" {
		t.Errorf("analyst = %q, want %q", rows[0].Analyst, "unknown")
	}
}

type triple struct {
	listing string
	field   string
	filled  bool
}

func collectTriples(t *testing.T, database *db.DB) []triple {
	t.Helper()
	rows, err := database.ListObservationRows(context.Background())
	if err != nil {
		t.Fatalf("ListObservationRows() error = %v", err)
	}
	triples := make([]triple, 0, len(rows))
	for _, r := range rows {
		triples = append(triples, triple{r.ListingIDText, r.Canonical, r.Filled})
	}
	sort.Slice(triples, func(i, j int) bool {
		if triples[i].listing != triples[j].listing {
			return triples[i].listing < triples[j].listing
		}
		return triples[i].field < triples[j].field
	})
	return triples
}

func TestExportImportRoundTrip(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	seed := []struct {
		listing      string
		observations []ObservationInput
	}{
		{"MLS-001", []ObservationInput{{"Garage Type", true}, {"Lot Size", false}}},
		{"MLS-002", []ObservationInput{{"Garage Type", false}}},
	}
	for _, s := range seed {
		if _, err := recorder.RecordListing(ctx, "default", s.listing, s.observations, "alice"); err != nil {
			t.Fatalf("RecordListing(%q) error = %v", s.listing, err)
		}
	}

	before := collectTriples(t, database)

	rows, err := database.ListObservationRows(ctx)
	if err != nil {
		t.Fatalf("ListObservationRows() error = %v", err)
	}
	var buf bytes.Buffer
	if err := export.WriteObservationsCSV(&buf, rows); err != nil {
		t.Fatalf("WriteObservationsCSV() error = %v", err)
	}

	// Wipe the store and import the exported file under the same batch.
	for _, table := range []string{"observations", "listings", "fields"} {
		if _, err := database.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to wipe %s: %v", table, err)
		}
	}

	imported, err := recorder.ImportObservations(ctx, &buf, "default", "importer")
	if err != nil {
		t.Fatalf("ImportObservations() error = %v", err)
	}
	if imported != len(before) {
		t.Errorf("imported = %d, want %d", imported, len(before))
	}

	after := collectTriples(t, database)
	if len(after) != len(before) {
		t.Fatalf("round trip changed row count: %d vs %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("triple %d = %+v, want %+v", i, after[i], before[i])
		}
	}
}

func TestImportObservations_FindOrCreateByBatch(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	csvData := "listing_id,field,filled\nMLS-001,Garage Type,1\nMLS-001,Lot Size,0\n"
	imported, err := recorder.ImportObservations(ctx, bytes.NewBufferString(csvData), "round-2", "importer")
	if err != nil {
		t.Fatalf("ImportObservations() error = %v", err)
	}
	if imported != 2 {
		t.Errorf("imported = %d, want 2", imported)
	}

	stats, err := database.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	// Both rows name the same listing: one listing, two fields.
	if stats.Listings != 1 {
		t.Errorf("listings = %d, want 1", stats.Listings)
	}
	if stats.Fields != 2 {
		t.Errorf("fields = %d, want 2", stats.Fields)
	}
}

func TestBulkMarkEmpty_Idempotent(t *testing.T) {
	database, cleanup := testutil.TestDB(t)
	defer cleanup()

	ctx := context.Background()
	recorder := NewRecorder(database)

	if _, err := recorder.RecordListing(ctx, "default", "MLS-001",
		[]ObservationInput{{FieldText: "Garage Type", Filled: true}}, "alice"); err != nil {
		t.Fatalf("RecordListing() error = %v", err)
	}
	if _, err := recorder.RecordListing(ctx, "default", "MLS-002", nil, "alice"); err != nil {
		t.Fatalf("RecordListing() error = %v", err)
	}

	field, err := database.GetFieldByCanonical(ctx, "Garage Type")
	if err != nil {
		t.Fatalf("GetFieldByCanonical() error = %v", err)
	}

	created, err := recorder.BulkMarkEmpty(ctx, field.ID, "bulk_user")
	if err != nil {
		t.Fatalf("BulkMarkEmpty() error = %v", err)
	}
	if created != 1 {
		t.Errorf("BulkMarkEmpty() created = %d, want 1", created)
	}

	again, err := recorder.BulkMarkEmpty(ctx, field.ID, "bulk_user")
	if err != nil {
		t.Fatalf("BulkMarkEmpty() second run error = %v", err)
	}
	if again != 0 {
		t.Errorf("BulkMarkEmpty() second run created = %d, want 0", again)
	}
}

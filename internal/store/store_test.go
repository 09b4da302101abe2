package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestApplySchema(t *testing.T) {
	// WHAT: Verify schema creates all tables without error.
	// WHY: Everything else in the service writes into these tables.
	db := openTestDB(t)
	for _, table := range []string{"recon_items", "modules", "module_sources", "feedback", "sync_ledger"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestInsertAndGetRecon(t *testing.T) {
	// WHAT: Insert a recon item and read it back by ID.
	// WHY: Ingestion persists exactly one recon row per call.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	r := &ReconItem{
		ID:           "rcn-001",
		CreatedAt:    "2024-03-01T10:00:00.000Z",
		UpdatedAt:    "2024-03-01T10:00:00.000Z",
		Type:         "text",
		Title:        "Old quarry",
		RawText:      "abandoned quarry behind the ridge, rusted crane still standing",
		ParseStatus:  "parsed",
		QualityScore: 0.7,
		QualityNotes: "specific location, good detail",
	}
	if err := s.InsertRecon(ctx, r); err != nil {
		t.Fatalf("insert recon: %v", err)
	}

	got, err := s.GetRecon(ctx, "rcn-001")
	if err != nil {
		t.Fatalf("get recon: %v", err)
	}
	if got == nil {
		t.Fatal("recon not found")
	}
	if got.Title != "Old quarry" || got.QualityScore != 0.7 || got.ParseStatus != "parsed" {
		t.Errorf("round trip mismatch: %+v", got)
	}

	missing, err := s.GetRecon(ctx, "nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing recon")
	}
}

func TestListReconNewestFirst(t *testing.T) {
	// WHAT: ListRecon orders by created_at descending and honors the limit.
	// WHY: The list endpoint shows the freshest field notes first.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		r := &ReconItem{
			ID:        fmt.Sprintf("rcn-%03d", i),
			CreatedAt: fmt.Sprintf("2024-03-0%dT10:00:00.000Z", i),
			UpdatedAt: fmt.Sprintf("2024-03-0%dT10:00:00.000Z", i),
			Type:      "text",
			RawText:   "some recon text",
		}
		if err := s.InsertRecon(ctx, r); err != nil {
			t.Fatalf("insert recon %d: %v", i, err)
		}
	}

	items, err := s.ListRecon(ctx, 2)
	if err != nil {
		t.Fatalf("list recon: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "rcn-003" || items[1].ID != "rcn-002" {
		t.Errorf("wrong order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestReplaceModuleLastWriteWins(t *testing.T) {
	// WHAT: ReplaceModule overwrites an existing row by primary key.
	// WHY: Sync push applies rows unconditionally, no version checks.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	m := &Module{
		ID: "mod-001", CreatedAt: "2024-03-01T10:00:00.000Z", UpdatedAt: "2024-03-01T10:00:00.000Z",
		Title: "first", TagsJSON: "[]", WeatherJSON: `["auto"]`, DurationJSON: `["60m"]`,
		RangeJSON: `["short-drive"]`, Confidence: 0.5, PayloadJSON: "{}",
	}
	if err := s.ReplaceModule(ctx, m); err != nil {
		t.Fatalf("replace module: %v", err)
	}
	m.Title = "second"
	m.Confidence = 0.9
	if err := s.ReplaceModule(ctx, m); err != nil {
		t.Fatalf("replace module again: %v", err)
	}

	got, err := s.GetModule(ctx, "mod-001")
	if err != nil {
		t.Fatalf("get module: %v", err)
	}
	if got.Title != "second" || got.Confidence != 0.9 {
		t.Errorf("replace did not overwrite: %+v", got)
	}
	n, err := s.CountModules(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 module after double replace, got %d", n)
	}
}

func TestListModulesRankedByConfidence(t *testing.T) {
	// WHAT: ListModules orders by confidence descending, then recency.
	// WHY: Quest generation feeds the top modules to the oracle.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	rows := []struct {
		id         string
		created    string
		confidence float64
	}{
		{"mod-a", "2024-03-01T10:00:00.000Z", 0.4},
		{"mod-b", "2024-03-02T10:00:00.000Z", 0.9},
		{"mod-c", "2024-03-03T10:00:00.000Z", 0.9},
	}
	for _, r := range rows {
		m := &Module{
			ID: r.id, CreatedAt: r.created, UpdatedAt: r.created,
			TagsJSON: "[]", WeatherJSON: "[]", DurationJSON: "[]", RangeJSON: "[]",
			Confidence: r.confidence, PayloadJSON: "{}",
		}
		if err := s.ReplaceModule(ctx, m); err != nil {
			t.Fatalf("insert %s: %v", r.id, err)
		}
	}

	got, err := s.ListModules(ctx, 10)
	if err != nil {
		t.Fatalf("list modules: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 modules, got %d", len(got))
	}
	// Tie on confidence breaks by newer created_at.
	if got[0].ID != "mod-c" || got[1].ID != "mod-b" || got[2].ID != "mod-a" {
		t.Errorf("wrong order: %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestUpsertModuleSourceIdempotent(t *testing.T) {
	// WHAT: Re-inserting a provenance link with the same key leaves one row.
	// WHY: Retried ingestions and sync pushes must not accumulate duplicates.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	ms := &ModuleSource{
		ModuleID: "mod-001", ReconID: "rcn-001", Note: "Derived from recon",
		CreatedAt: "2024-03-01T10:00:00.000Z", UpdatedAt: "2024-03-01T10:00:00.000Z",
	}
	for i := 0; i < 3; i++ {
		if err := s.UpsertModuleSource(ctx, ms); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	links, err := s.ListModuleSources(ctx, "mod-001")
	if err != nil {
		t.Fatalf("list sources: %v", err)
	}
	if len(links) != 1 {
		t.Errorf("expected 1 link, got %d", len(links))
	}
}

func TestInsertModuleWithSourceAtomic(t *testing.T) {
	// WHAT: The module row and its provenance link land together, and a
	// failed insert leaves neither behind.
	// WHY: Admission writes both in one transaction so a crash or conflict
	// partway never produces a module without provenance, or vice versa.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	stamp := "2024-03-01T10:00:00.000Z"
	m := &Module{
		ID: "mod-001", CreatedAt: stamp, UpdatedAt: stamp,
		Title: "The Quarry Bell", TagsJSON: "[]", WeatherJSON: "[]",
		DurationJSON: "[]", RangeJSON: "[]", Confidence: 0.8, PayloadJSON: "{}",
	}
	link := &ModuleSource{
		ModuleID: "mod-001", ReconID: "rcn-001", Note: "Derived from recon",
		CreatedAt: stamp, UpdatedAt: stamp,
	}
	if err := s.InsertModuleWithSource(ctx, m, link); err != nil {
		t.Fatalf("insert with source: %v", err)
	}

	got, err := s.GetModule(ctx, "mod-001")
	if err != nil {
		t.Fatalf("get module: %v", err)
	}
	if got == nil {
		t.Fatal("module row missing")
	}
	links, err := s.ListModuleSources(ctx, "mod-001")
	if err != nil {
		t.Fatalf("list sources: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}

	// Duplicate module id fails the whole transaction; the second link
	// carries a new recon id and must not survive the rollback.
	again := &ModuleSource{
		ModuleID: "mod-001", ReconID: "rcn-002", Note: "Derived from recon",
		CreatedAt: stamp, UpdatedAt: stamp,
	}
	if err := s.InsertModuleWithSource(ctx, m, again); err == nil {
		t.Fatal("expected duplicate module id to fail")
	}
	links, err = s.ListModuleSources(ctx, "mod-001")
	if err != nil {
		t.Fatalf("list sources after failure: %v", err)
	}
	if len(links) != 1 || links[0].ReconID != "rcn-001" {
		t.Errorf("rollback left unexpected links: %+v", links)
	}
}

func TestListModulesSinceStrictWatermark(t *testing.T) {
	// WHAT: ListModulesSince excludes rows at exactly the watermark timestamp.
	// WHY: Pull uses strict inequality so a client never re-receives the row
	// whose timestamp it used as the watermark.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	m := &Module{
		ID: "mod-001", CreatedAt: "2024-01-01T00:00:00.000Z", UpdatedAt: "2024-01-01T00:00:00.000Z",
		TagsJSON: "[]", WeatherJSON: "[]", DurationJSON: "[]", RangeJSON: "[]",
		Confidence: 0.9, PayloadJSON: "{}",
	}
	if err := s.ReplaceModule(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	before, err := s.ListModulesSince(ctx, "2023-12-31T00:00:00.000Z", 100)
	if err != nil {
		t.Fatalf("since earlier: %v", err)
	}
	if len(before) != 1 {
		t.Errorf("expected 1 row for earlier watermark, got %d", len(before))
	}

	at, err := s.ListModulesSince(ctx, "2024-01-01T00:00:00.000Z", 100)
	if err != nil {
		t.Fatalf("since equal: %v", err)
	}
	if len(at) != 0 {
		t.Errorf("expected 0 rows for equal watermark, got %d", len(at))
	}
}

func TestLedgerOverwrite(t *testing.T) {
	// WHAT: A second push replaces the client's ledger row, not appends.
	// WHY: The ledger records the last push only, one row per client.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	if err := s.ReplaceLedger(ctx, &SyncLedgerEntry{ClientID: "phone-1", LastPushAt: "2024-03-01T10:00:00.000Z", LastPushCount: 3}); err != nil {
		t.Fatalf("first push ledger: %v", err)
	}
	if err := s.ReplaceLedger(ctx, &SyncLedgerEntry{ClientID: "phone-1", LastPushAt: "2024-03-02T10:00:00.000Z", LastPushCount: 1}); err != nil {
		t.Fatalf("second push ledger: %v", err)
	}

	got, err := s.GetLedger(ctx, "phone-1")
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if got == nil {
		t.Fatal("ledger row missing")
	}
	if got.LastPushAt != "2024-03-02T10:00:00.000Z" || got.LastPushCount != 1 {
		t.Errorf("ledger not overwritten: %+v", got)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sync_ledger`).Scan(&n); err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 ledger row, got %d", n)
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	// WHAT: Insert feedback and read it back via the sync listing.
	// WHY: Feedback rows flow out through pull like any other synced table.
	db := openTestDB(t)
	s := NewStore(db)
	ctx := context.Background()

	f := &FeedbackRecord{
		ID: "fbk-001", CreatedAt: "2024-03-01T10:00:00.000Z", UpdatedAt: "2024-03-01T10:00:00.000Z",
		Kind: "module", TargetID: "mod-001", Rating: 4, Note: "kids loved the riddle", Action: "none",
	}
	if err := s.InsertFeedback(ctx, f); err != nil {
		t.Fatalf("insert feedback: %v", err)
	}

	got, err := s.ListFeedbackSince(ctx, EpochStart, 10)
	if err != nil {
		t.Fatalf("list feedback: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 feedback row, got %d", len(got))
	}
	if got[0].Rating != 4 || got[0].TargetID != "mod-001" {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

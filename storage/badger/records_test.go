package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/veridex/tagrank/core"
	"github.com/veridex/tagrank/storage"
)

func TestRecordBasics(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.Record{
		Id:   "movie-1",
		Tags: core.Tags{"Subject": core.String("Comedy"), "Year": core.Int(1987)},
	}

	if err := records.PutRecords(ctx, record); err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}

	if record.InsertedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("Expected timestamps to be populated")
	}

	retrieved, err := records.GetRecord(ctx, "movie-1")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}

	if !retrieved.Tags["Subject"].Equal(core.String("Comedy")) {
		t.Fatalf("Expected Subject tag to round-trip, got %+v", retrieved.Tags["Subject"])
	}
}

func TestRecordRoundTrip_Overwrite(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.Record{Id: "r1", Text: "first"}
	if err := records.PutRecords(ctx, record); err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}
	inserted := record.InsertedAt

	// Same key again is an idempotent overwrite that keeps InsertedAt.
	update := &core.Record{Id: "r1", Text: "second"}
	if err := records.PutRecords(ctx, update); err != nil {
		t.Fatalf("Failed to overwrite record: %v", err)
	}

	retrieved, err := records.GetRecord(ctx, "r1")
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Text != "second" {
		t.Fatalf("Expected 'second', got %q", retrieved.Text)
	}
	if !retrieved.InsertedAt.Equal(inserted) {
		t.Fatal("Expected InsertedAt to survive overwrite")
	}
}

func TestRecordNotFound(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = records.GetRecord(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	if err := records.DeleteRecords(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on delete, got %v", err)
	}
}

func TestGetRecords_SkipsMissing(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	if err := records.PutRecords(ctx,
		&core.Record{Id: "a", Text: "a"},
		&core.Record{Id: "b", Text: "b"},
	); err != nil {
		t.Fatalf("Failed to put records: %v", err)
	}

	got, err := records.GetRecords(ctx, "a", "missing", "b")
	if err != nil {
		t.Fatalf("Failed to get records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
}

func TestPutRecords_MissingID(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	err = records.PutRecords(context.Background(), &core.Record{Text: "no id"})
	if !errors.Is(err, storage.ErrMissingID) {
		t.Fatalf("Expected ErrMissingID, got %v", err)
	}
}

func TestPutRecords_ParentImmutable(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	if err := records.PutRecords(ctx, &core.Record{Id: "c1", ParentId: "p1", Text: "x"}); err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}

	err = records.PutRecords(ctx, &core.Record{Id: "c1", ParentId: "p2", Text: "x"})
	if !errors.Is(err, core.ErrParentImmutable) {
		t.Fatalf("Expected ErrParentImmutable, got %v", err)
	}
}

func TestEachRecord(t *testing.T) {
	records, chunks, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { chunks.Close(); records.Close(); backend.Close() }()

	ctx := context.Background()

	if err := records.PutRecords(ctx,
		&core.Record{Id: "a", Text: "a"},
		&core.Record{Id: "b", Text: "b"},
		&core.Record{Id: "c", Text: "c"},
	); err != nil {
		t.Fatalf("Failed to put records: %v", err)
	}

	// Chunks must not appear in the root-record iteration.
	if err := chunks.PutChunks(ctx, &core.Record{Id: "ch", ParentId: "a", Text: "chunk"}); err != nil {
		t.Fatalf("Failed to put chunk: %v", err)
	}

	var seen []core.ID
	err = records.EachRecord(ctx, func(record *core.Record) error {
		seen = append(seen, record.Id)
		return nil
	})
	if err != nil {
		t.Fatalf("EachRecord failed: %v", err)
	}
	if len(seen) != 3 {
		t.Fatalf("Expected 3 records, got %d: %v", len(seen), seen)
	}
}

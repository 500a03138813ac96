package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestStore(t *testing.T) *SQLiteRunStore {
	t.Helper()
	s, err := NewSQLiteRunStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRun("baseline", 42, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected save to assign an id")
	}

	got, err := s.GetRun(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("round-trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetRun(context.Background(), "run-nope")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestSQLiteListOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	old := sampleRun("old", 1, base.Add(-2*time.Hour))
	mid := sampleRun("mid", 2, base.Add(-time.Hour))
	recent := sampleRun("recent", 3, base)
	for _, rec := range []*RunRecord{mid, old, recent} {
		if err := s.SaveRun(ctx, rec); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for i, want := range []string{"recent", "mid", "old"} {
		if runs[i].Name != want {
			t.Errorf("position %d: expected %s, got %s", i, want, runs[i].Name)
		}
	}
	for _, r := range runs {
		if r.Series != nil {
			t.Errorf("list should omit series, run %s has %d points", r.ID, len(r.Series))
		}
		if r.ConfigYAML != "" {
			t.Errorf("list should omit config snapshot, run %s has one", r.ID)
		}
	}
}

func TestSQLiteDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rec := sampleRun("doomed", 9, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := s.DeleteRun(ctx, rec.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	got, err := s.GetRun(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Error("expected run gone after delete")
	}

	err = s.DeleteRun(ctx, rec.ID)
	if err == nil || !strings.Contains(err.Error(), "run not found") {
		t.Errorf("expected not-found error on double delete, got %v", err)
	}
}

func TestSQLiteReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := sampleRun("same", 42, at)
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	updated := sampleRun("same", 42, at)
	updated.FinalAdopters = 9
	updated.Series = updated.Series[:1]
	if err := s.SaveRun(ctx, updated); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if updated.ID != rec.ID {
		t.Fatalf("expected matching ids, got %s and %s", rec.ID, updated.ID)
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected replacement, got %d runs", len(runs))
	}

	got, err := s.GetRun(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.FinalAdopters != 9 || len(got.Series) != 1 {
		t.Errorf("expected replaced run, got final=%d series=%d points",
			got.FinalAdopters, len(got.Series))
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewSQLiteRunStore(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	rec := sampleRun("durable", 5, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	if err := s.SaveRun(ctx, rec); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewSQLiteRunStore(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetRun(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run to survive reopen")
	}
	if diff := cmp.Diff(rec, got); diff != "" {
		t.Errorf("reopened mismatch (-saved +loaded):\n%s", diff)
	}
}

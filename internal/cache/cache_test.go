package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sociometrix/smx/internal/report"
	"github.com/sociometrix/smx/internal/survey"
)

func setupTestCache(t *testing.T) (*Cache, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "smx-cache-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}

	cache, err := Open(tmpDir)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("open cache: %v", err)
	}

	cleanup := func() {
		cache.Close()
		os.RemoveAll(tmpDir)
	}

	return cache, cleanup
}

func sampleReport(t *testing.T, id survey.ResearchID) *report.Report {
	t.Helper()
	roster := survey.NewRoster([]survey.Participant{
		{ID: 1, ResearchID: id, Name: "Ann"},
		{ID: 2, ResearchID: id, Name: "Bob"},
		{ID: 3, ResearchID: id, Name: "Cat"},
	})
	responses := survey.NewResponseSet(id, []survey.Response{
		{ResearchID: id, QuestionID: 1, Source: 1, Target: 2},
		{ResearchID: id, QuestionID: 1, Source: 2, Target: 1},
		{ResearchID: id, QuestionID: 2, Source: 3, Target: 1},
	})
	questions := []survey.ResearchQuestion{
		{ResearchID: id, QuestionID: 1, Text: "Desk?", ChoiceCount: 1},
		{ResearchID: id, QuestionID: 2, Text: "Trip?", ChoiceCount: 1},
	}

	r, err := report.NewAssembler(report.DefaultOptions()).Assemble(roster, responses, questions)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return r
}

func TestCacheOpenClose(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "smx-cache-test-*")
	if err != nil {
		t.Fatalf("create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	cache, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	expectedPath := filepath.Join(tmpDir, FileName)
	if cache.Path() != expectedPath {
		t.Errorf("path = %q, want %q", cache.Path(), expectedPath)
	}
	if cache.DB() == nil {
		t.Error("DB() returned nil")
	}

	if err := cache.Close(); err != nil {
		t.Errorf("close: %v", err)
	}

	// Reopen should work
	cache2, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer cache2.Close()
}

func TestReportRoundTrip(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	want := sampleReport(t, 1)
	if err := cache.PutReport(ctx, 1, "k1", want); err != nil {
		t.Fatalf("put report: %v", err)
	}

	got, ok, err := cache.GetReport(ctx, 1, "k1")
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cached report differs (-want +got):\n%s", diff)
	}
}

func TestReportMiss(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.PutReport(ctx, 1, "k1", sampleReport(t, 1)); err != nil {
		t.Fatalf("put report: %v", err)
	}

	tests := []struct {
		name string
		id   survey.ResearchID
		key  string
	}{
		{"other key", 1, "k2"},
		{"other research", 2, "k1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok, err := cache.GetReport(ctx, tt.id, tt.key)
			if err != nil {
				t.Fatalf("get report: %v", err)
			}
			if ok || r != nil {
				t.Errorf("GetReport(%d, %q) = %v, %v, expected a miss", tt.id, tt.key, r, ok)
			}
		})
	}
}

func TestReportReplace(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	first := sampleReport(t, 1)
	second := sampleReport(t, 1)
	second.Aggregate.Summary.Responses = 99

	cache.PutReport(ctx, 1, "k", first)
	if err := cache.PutReport(ctx, 1, "k", second); err != nil {
		t.Fatalf("replace report: %v", err)
	}

	got, _, _ := cache.GetReport(ctx, 1, "k")
	if got.Aggregate.Summary.Responses != 99 {
		t.Errorf("Responses = %d, want 99", got.Aggregate.Summary.Responses)
	}

	stats, err := cache.GetStats()
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if stats.Reports != 1 {
		t.Errorf("Reports = %d, want 1", stats.Reports)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	cache, cleanup := setupTestCache(t)
	defer cleanup()
	ctx := context.Background()

	cache.PutReport(ctx, 1, "a", sampleReport(t, 1))
	cache.PutReport(ctx, 1, "b", sampleReport(t, 1))
	cache.PutReport(ctx, 2, "a", sampleReport(t, 2))

	stats, _ := cache.GetStats()
	if stats.Reports != 3 || stats.Research != 2 {
		t.Fatalf("stats = %+v, want 3 reports over 2 research", stats)
	}

	if err := cache.Invalidate(ctx, 1); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	stats, _ = cache.GetStats()
	if stats.Reports != 1 || stats.Research != 1 {
		t.Errorf("after invalidate stats = %+v, want 1 report", stats)
	}
	if _, ok, _ := cache.GetReport(ctx, 2, "a"); !ok {
		t.Error("research 2 should still be cached")
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	stats, _ = cache.GetStats()
	if stats.Reports != 0 {
		t.Errorf("after clear Reports = %d, want 0", stats.Reports)
	}
}

func TestKey(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	research := survey.Research{ID: 1, CreatedAt: created}
	opts := report.DefaultOptions()

	base, err := Key(research, opts)
	if err != nil {
		t.Fatalf("key: %v", err)
	}
	if again, _ := Key(research, opts); again != base {
		t.Errorf("Key is not stable: %q vs %q", base, again)
	}

	precise := opts
	precise.Precision = -1
	if k, _ := Key(research, precise); k == base {
		t.Error("different precision should change the key")
	}

	recreated := research
	recreated.CreatedAt = created.Add(time.Second)
	if k, _ := Key(recreated, opts); k == base {
		t.Error("different creation time should change the key")
	}

	// The research id is not part of the key; entries are stored per id.
	other := research
	other.ID = 2
	if k, _ := Key(other, opts); k != base {
		t.Error("research id should not change the key")
	}
}

package analytics

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestSaltIsStable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.Salt(ctx)
	if err != nil {
		t.Fatalf("Salt: %v", err)
	}
	if len(first) != 64 {
		t.Fatalf("salt length = %d, want 64", len(first))
	}
	second, err := s.Salt(ctx)
	if err != nil {
		t.Fatalf("Salt: %v", err)
	}
	if first != second {
		t.Errorf("salt changed between calls: %q != %q", first, second)
	}
}

func TestSettings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, "missing")
	if err != nil || v != "" {
		t.Fatalf("GetSetting(missing) = %q, %v", v, err)
	}
	if err := s.SetSetting(ctx, "k", "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, "k", "b"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetSetting(ctx, "k"); v != "b" {
		t.Errorf("GetSetting(k) = %q, want b", v)
	}
}

func TestGetStats(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	visits := []Visit{
		{VisitorID: "a", Browser: "Chrome", OS: "Windows", Device: "Desktop", Path: "/", Referrer: "Direct", Timestamp: day},
		{VisitorID: "a", Browser: "Chrome", OS: "Windows", Device: "Desktop", Path: "/about/", Referrer: "Internal", Timestamp: day.Add(time.Minute)},
		{VisitorID: "b", Browser: "Firefox", OS: "Linux", Device: "Desktop", Path: "/", Referrer: "Google", Timestamp: day.Add(24 * time.Hour)},
		// outside the range
		{VisitorID: "c", Browser: "Safari", OS: "iOS", Device: "Mobile", Path: "/", Referrer: "Direct", Timestamp: day.AddDate(0, -1, 0)},
	}
	for _, v := range visits {
		if err := s.SaveVisit(ctx, v); err != nil {
			t.Fatalf("SaveVisit: %v", err)
		}
	}
	if err := s.SaveBotVisit(ctx, BotVisit{BotName: "Googlebot", Path: "/", Timestamp: day}); err != nil {
		t.Fatalf("SaveBotVisit: %v", err)
	}

	stats, err := s.GetStats(ctx, day.Add(-time.Hour), day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 3 || stats.UniqueVisitors != 2 || stats.BotVisits != 1 {
		t.Errorf("totals = %d views, %d visitors, %d bots; want 3, 2, 1",
			stats.TotalViews, stats.UniqueVisitors, stats.BotVisits)
	}
	if diff := cmp.Diff([]PageStat{{"/", 2}, {"/about/", 1}}, stats.TopPages); diff != "" {
		t.Errorf("TopPages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]DimensionStat{{"Chrome", 2}, {"Firefox", 1}}, stats.Browsers); diff != "" {
		t.Errorf("Browsers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]DimensionStat{{"Googlebot", 1}}, stats.TopBots); diff != "" {
		t.Errorf("TopBots mismatch (-want +got):\n%s", diff)
	}
	want := []DailyView{{"2026-03-10", 2}, {"2026-03-11", 1}}
	if diff := cmp.Diff(want, stats.DailyViews); diff != "" {
		t.Errorf("DailyViews mismatch (-want +got):\n%s", diff)
	}
}

func TestGetStatsEmpty(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now()
	stats, err := s.GetStats(context.Background(), now.AddDate(0, 0, -7), now)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalViews != 0 || len(stats.TopPages) != 0 || stats.TopPages == nil {
		t.Errorf("unexpected stats for empty store: %+v", stats)
	}
}

func TestCleanupOldVisits(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_ = s.SaveVisit(ctx, Visit{VisitorID: "old", Path: "/", Timestamp: now.AddDate(0, 0, -100)})
	_ = s.SaveVisit(ctx, Visit{VisitorID: "new", Path: "/", Timestamp: now})
	_ = s.SaveBotVisit(ctx, BotVisit{BotName: "Bingbot", Path: "/", Timestamp: now.AddDate(0, 0, -100)})

	n, err := s.CleanupOldVisits(ctx, 90*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupOldVisits: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	stats, _ := s.GetStats(ctx, now.AddDate(-1, 0, 0), now.Add(time.Minute))
	if stats.TotalViews != 1 || stats.BotVisits != 0 {
		t.Errorf("after cleanup: %d views, %d bots", stats.TotalViews, stats.BotVisits)
	}
}

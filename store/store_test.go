package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/menuhound/menuhound/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndRecent(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	res := models.SiteResult{
		Site:    "korzo",
		URL:     "https://example-korzo.sk/menu",
		Success: true,
		Items: []models.MenuItem{
			{Name: "Goulash", Price: "3,50 €", Category: "Denné menu", Description: "with bread", SourceStep: 1},
			{Name: "Sviečková", Price: "7,40 €", Category: "Denné menu", Description: "knedľa", SourceStep: 2},
		},
		ScreenshotPaths: []string{"shots/korzo-step1.png", "shots/korzo.png"},
		SectionMarkdown: "## Denné menu\n- Goulash 3,50 €",
		ProbeVerdict:    "ok",
		ScrapedAt:       time.Now(),
	}
	if err := st.Save(ctx, res); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := st.Recent(ctx, "korzo", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("recent returned %d runs, want 1", len(got))
	}

	run := got[0]
	if run.Site != "korzo" || !run.Success || run.ProbeVerdict != "ok" {
		t.Errorf("run = %+v, fields do not round-trip", run)
	}
	if len(run.Items) != 2 {
		t.Fatalf("run has %d items, want 2", len(run.Items))
	}
	if run.Items[0].Name != "Goulash" || run.Items[0].Price != "3,50 €" {
		t.Errorf("first item = %+v", run.Items[0])
	}
	if len(run.ScreenshotPaths) != 2 {
		t.Errorf("screenshots = %v, want 2 paths", run.ScreenshotPaths)
	}
	if run.SectionMarkdown == "" {
		t.Error("section markdown was lost")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 24, 11, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		res := models.SiteResult{
			Site:      "korzo",
			URL:       "https://example-korzo.sk/menu",
			Success:   true,
			Items:     []models.MenuItem{},
			ScrapedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := st.Save(ctx, res); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	got, err := st.Recent(ctx, "korzo", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("recent returned %d runs, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].ScrapedAt.After(got[i-1].ScrapedAt) {
			t.Error("results are not newest-first")
		}
	}
}

func TestSaveFailedRun(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	res := models.SiteResult{
		Site:      "zaba",
		URL:       "https://example-zaba.sk/",
		Success:   false,
		Items:     []models.MenuItem{},
		Error:     "NAVIGATION_FAILED: navigation to site URL failed",
		ScrapedAt: time.Now(),
	}
	if err := st.Save(ctx, res); err != nil {
		t.Fatalf("save failed run: %v", err)
	}

	got, err := st.Recent(ctx, "zaba", 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("recent returned %d runs, want 1", len(got))
	}
	if got[0].Success {
		t.Error("failed run round-tripped as success")
	}
	if got[0].Error == "" {
		t.Error("error string was lost")
	}
	if got[0].Items == nil || len(got[0].Items) != 0 {
		t.Errorf("items = %v, want empty non-nil slice", got[0].Items)
	}
}

func TestRecentUnknownSite(t *testing.T) {
	st := openTestStore(t)
	got, err := st.Recent(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("recent for unknown site returned %d runs, want 0", len(got))
	}
}

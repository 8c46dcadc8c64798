package services

import (
	"context"
	"testing"
	"time"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/store"
)

func seedReports(t *testing.T) (store.Store, time.Time) {
	t.Helper()
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

	pending := []models.Ticket{
		{ID: "TKT-1", FromStation: "CSTM", ToStation: "KYN", Class: "SL", CreatedBy: "Najad", Created: now.Add(-time.Hour)},
		{ID: "TKT-2", FromStation: "NDLS", ToStation: "BCT", Class: "3A", CreatedBy: "Babu", Created: now.AddDate(0, 0, -2)},
		{ID: "TKT-3", FromStation: "CSTM", ToStation: "KYN", Class: "SL", CreatedBy: "Babu", Created: now.Add(-2 * time.Hour)},
	}
	for _, tk := range pending {
		rec, _ := store.Encode(tk)
		if err := fs.Add(ctx, domain.CollectionTickets, rec); err != nil {
			t.Fatalf("seed ticket: %v", err)
		}
	}
	rec, _ := store.Encode(models.BookedTicket{ID: "BKT-1", From: "CSTM", To: "KYN", Class: "SL", Staff: "Najad", BookedDate: now.AddDate(0, 0, -1)})
	if err := fs.Add(ctx, domain.CollectionBooked, rec); err != nil {
		t.Fatalf("seed booked: %v", err)
	}
	return fs, now
}

func TestReportsStats(t *testing.T) {
	st, now := seedReports(t)
	svc := ReportsService{Store: st, Now: func() time.Time { return now }}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalTickets != 4 || stats.BookedTickets != 1 || stats.PendingTickets != 3 {
		t.Fatalf("unexpected totals %+v", stats)
	}
	if stats.TodayTickets != 2 {
		t.Fatalf("today = %d", stats.TodayTickets)
	}
	if stats.CompletionRate != 25 {
		t.Fatalf("completion rate = %v", stats.CompletionRate)
	}
	if len(stats.TopRoutes) != 2 || stats.TopRoutes[0].Route != "CSTM → KYN" || stats.TopRoutes[0].Count != 3 {
		t.Fatalf("top routes = %+v", stats.TopRoutes)
	}
}

func TestReportsAnalytics(t *testing.T) {
	st, now := seedReports(t)
	svc := ReportsService{Store: st, Now: func() time.Time { return now }}

	a, err := svc.Analytics(context.Background())
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if len(a.UserPerformance) != 2 || a.UserPerformance[0].Staff != "Najad" {
		t.Fatalf("staff order should follow first appearance: %+v", a.UserPerformance)
	}
	najad := a.UserPerformance[0]
	if najad.Total != 2 || najad.Booked != 1 || najad.Pending != 1 {
		t.Fatalf("najad = %+v", najad)
	}
	if a.RouteAnalysis[0].Route != "CSTM → KYN" || a.RouteAnalysis[0].Booked != 1 || a.RouteAnalysis[0].Count != 3 {
		t.Fatalf("routes = %+v", a.RouteAnalysis)
	}
	if len(a.ClassDistribution) != 2 || a.ClassDistribution[0].Class != "SL" || a.ClassDistribution[0].Count != 3 {
		t.Fatalf("classes = %+v", a.ClassDistribution)
	}
	if len(a.RecentActivity) != 3 || a.RecentActivity[0].ID != "TKT-1" {
		t.Fatalf("recent = %+v", a.RecentActivity)
	}
}

func TestCompletionRate(t *testing.T) {
	if completionRate(0, 0) != 0 {
		t.Fatalf("empty rate should be 0")
	}
	if got := completionRate(1, 3); got != 33.3 {
		t.Fatalf("rate = %v", got)
	}
}

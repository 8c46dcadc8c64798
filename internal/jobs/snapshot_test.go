package jobs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/store"
)

func TestSnapshotRunOnce(t *testing.T) {
	src, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx := context.Background()
	if err := src.Add(ctx, domain.CollectionTickets, store.Record{"id": "TKT-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	dest := t.TempDir()
	snap := Snapshotter{
		Store: src,
		Dir:   dest,
		Now:   func() time.Time { return time.Date(2025, 6, 1, 23, 30, 0, 0, time.Local) },
	}
	res, err := snap.RunOnce(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Counts[domain.CollectionTickets] != 1 || res.Counts[domain.CollectionBooked] != 0 {
		t.Fatalf("counts = %+v", res.Counts)
	}
	for _, name := range []string{"tickets.json", "booked_tickets.json"} {
		if _, err := os.Stat(filepath.Join(dest, "2025-06-01", name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := parseClock("23:30")
	if err != nil || h != 23 || m != 30 {
		t.Fatalf("parse = %d %d %v", h, m, err)
	}
	for _, bad := range []string{"", "24:00", "7", "aa:bb", "10:60"} {
		if _, _, err := parseClock(bad); err == nil {
			t.Fatalf("%q should fail", bad)
		}
	}
}

func TestStartDailyRejectsBadTime(t *testing.T) {
	if _, err := (Snapshotter{}).StartDaily("nope"); err == nil {
		t.Fatalf("expected error")
	}
}

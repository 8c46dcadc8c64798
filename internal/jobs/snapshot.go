// Package jobs holds scheduled maintenance work.
package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/store"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

var snapshotCollections = []string{domain.CollectionTickets, domain.CollectionBooked}

// Snapshotter copies every collection into <Dir>/<YYYY-MM-DD>/ as JSON files.
// A second run on the same day overwrites that day's copy.
type Snapshotter struct {
	Store store.Store
	Dir   string
	Now   func() time.Time
}

type SnapshotResult struct {
	Dir    string         `json:"dir"`
	Counts map[string]int `json:"counts"`
}

func (s Snapshotter) RunOnce(ctx context.Context) (SnapshotResult, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	dir := filepath.Join(s.Dir, utils.FormatDate(now))
	out, err := store.NewFileStore(dir)
	if err != nil {
		return SnapshotResult{}, err
	}

	res := SnapshotResult{Dir: dir, Counts: map[string]int{}}
	for _, c := range snapshotCollections {
		recs, err := s.Store.Read(ctx, c)
		if err != nil {
			return SnapshotResult{}, fmt.Errorf("snapshot read %s: %w", c, err)
		}
		if err := out.Write(ctx, c, recs); err != nil {
			return SnapshotResult{}, fmt.Errorf("snapshot write %s: %w", c, err)
		}
		res.Counts[c] = len(recs)
	}
	return res, nil
}

// StartDaily schedules RunOnce every day at "HH:MM" local time. The caller owns
// the returned scheduler and must Shutdown it.
func (s Snapshotter) StartDaily(at string) (gocron.Scheduler, error) {
	hour, minute, err := parseClock(at)
	if err != nil {
		return nil, err
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(time.Local))
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(hour, minute, 0),
			),
		),
		gocron.NewTask(func() {
			res, err := s.RunOnce(context.Background())
			if err != nil {
				utils.LogFailure("", "jobs", "snapshot", err)
				return
			}
			utils.LogEvent("", "jobs", "snapshot", "collections copied",
				zap.String("dir", res.Dir), zap.Any("counts", res.Counts))
		}),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}

func parseClock(at string) (uint, uint, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(at), ":")
	if !ok {
		return 0, 0, fmt.Errorf("snapshot time %q: want HH:MM", at)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("snapshot time %q: bad hour", at)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("snapshot time %q: bad minute", at)
	}
	return uint(h), uint(m), nil
}

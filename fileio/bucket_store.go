package fileio

import (
	"fmt"
	"os"
	"time"

	"github.com/penwyp/timecat/models"
)

// BucketStore owns the open hourly bucket file. It appends finalized
// segments and detects hour and day boundary crossings. On a crossing the
// new bucket is created before the closed one is reported, so the rollup
// engine never races the tracker on the same file.
type BucketStore struct {
	dir         string
	user        string
	currentHour time.Time
	currentPath string
}

// RolloverEvent describes a boundary crossing observed by the store.
type RolloverEvent struct {
	ClosedHourly string // hourly bucket to merge
	DailyTarget  string // daily bucket it merges into
	ClosedDaily  string // non-empty when the calendar day also rolled over
}

// OpenBucketStore opens (creating if needed) the hourly bucket for the hour
// containing now.
func OpenBucketStore(dir, user string, now time.Time) (*BucketStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create bucket dir %s: %w", dir, err)
	}

	b := &BucketStore{dir: dir, user: user}
	if err := b.openHour(now); err != nil {
		return nil, err
	}
	return b, nil
}

// CurrentPath returns the path of the open hourly bucket.
func (b *BucketStore) CurrentPath() string {
	return b.currentPath
}

// Append writes one finalized segment to the open hourly bucket.
func (b *BucketStore) Append(seg *models.Segment) error {
	return AppendRows(b.currentPath, models.HourlyHeader, [][]string{SegmentRow(seg)})
}

// Rollover checks whether now has crossed into a new hour. When it has, the
// store opens the new hourly bucket first and then reports the closed one,
// together with the daily bucket it belongs to and, on a date change, the
// daily bucket that is now complete.
func (b *BucketStore) Rollover(now time.Time) (*RolloverEvent, error) {
	hour := models.FloorToHour(now)
	if hour.Equal(b.currentHour) {
		return nil, nil
	}

	closedHour := b.currentHour
	closedPath := b.currentPath

	if err := b.openHour(now); err != nil {
		return nil, err
	}

	ev := &RolloverEvent{
		ClosedHourly: closedPath,
		DailyTarget:  DailyFilename(b.dir, b.user, closedHour),
	}

	cy, cm, cd := closedHour.Date()
	ny, nm, nd := now.Date()
	if cy != ny || cm != nm || cd != nd {
		ev.ClosedDaily = ev.DailyTarget
	}
	return ev, nil
}

// openHour creates the hourly bucket for now's hour with its header row.
func (b *BucketStore) openHour(now time.Time) error {
	b.currentHour = models.FloorToHour(now)
	b.currentPath = HourlyFilename(b.dir, now)
	// Touch the file so the header exists even for an empty hour.
	return AppendRows(b.currentPath, models.HourlyHeader, nil)
}

package fileio

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/timecat/models"
)

func TestBucketStore_OpenCreatesCurrentBucket(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 11, 14, 5, 0, 0, time.Local)

	store, err := OpenBucketStore(dir, "alice", now)
	require.NoError(t, err)

	assert.Equal(t, HourlyFilename(dir, now), store.CurrentPath())
	header, rows, err := ReadRows(store.CurrentPath())
	require.NoError(t, err)
	assert.Equal(t, models.HourlyHeader, header)
	assert.Empty(t, rows)
}

func TestBucketStore_AppendAndReadBack(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 11, 14, 5, 0, 0, time.Local)
	store, err := OpenBucketStore(dir, "alice", now)
	require.NoError(t, err)

	seg := &models.Segment{
		User:       "alice",
		App:        "acad.exe",
		File:       "plan.dwg",
		FilePath:   "C:/Projects/446-IMD3/plan.dwg",
		Duration:   12.5,
		HourBucket: models.FloorToHour(now),
	}
	require.NoError(t, store.Append(seg))

	_, rows, err := ReadRows(store.CurrentPath())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	dr, user, err := ParseHourlyRow(rows[0], "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "plan.dwg", dr.File)
	assert.Equal(t, 12.5, dr.Duration)
	assert.Equal(t, "2024-03-11 14:00", dr.DateHour)
}

func TestBucketStore_NoRolloverWithinHour(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 11, 14, 5, 0, 0, time.Local)
	store, err := OpenBucketStore(dir, "alice", now)
	require.NoError(t, err)

	ev, err := store.Rollover(now.Add(54 * time.Minute))
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestBucketStore_HourRollover(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 11, 14, 59, 0, 0, time.Local)
	store, err := OpenBucketStore(dir, "alice", now)
	require.NoError(t, err)
	oldPath := store.CurrentPath()

	next := time.Date(2024, 3, 11, 15, 0, 1, 0, time.Local)
	ev, err := store.Rollover(next)
	require.NoError(t, err)

	require.NotNil(t, ev)
	assert.Equal(t, oldPath, ev.ClosedHourly)
	assert.Equal(t, DailyFilename(dir, "alice", now), ev.DailyTarget)
	assert.Empty(t, ev.ClosedDaily)

	// The new bucket is already open before the closed one is reported.
	assert.Equal(t, HourlyFilename(dir, next), store.CurrentPath())
	_, err = os.Stat(store.CurrentPath())
	assert.NoError(t, err)
}

func TestBucketStore_DayRollover(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 11, 23, 30, 0, 0, time.Local)
	store, err := OpenBucketStore(dir, "alice", now)
	require.NoError(t, err)

	next := time.Date(2024, 3, 12, 0, 0, 2, 0, time.Local)
	ev, err := store.Rollover(next)
	require.NoError(t, err)

	// The closed hour belongs to March 11, so both the daily target and
	// the completed daily bucket are the March 11 file.
	require.NotNil(t, ev)
	assert.Equal(t, DailyFilename(dir, "alice", now), ev.DailyTarget)
	assert.Equal(t, ev.DailyTarget, ev.ClosedDaily)
}

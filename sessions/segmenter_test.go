package sessions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/timecat/models"
)

func sampleAt(app, path, name string, ts time.Time) *models.ActivitySample {
	return &models.ActivitySample{
		User:      "alice",
		App:       app,
		FilePath:  path,
		FileName:  name,
		Timestamp: ts,
	}
}

func TestSegmenter_FirstSampleOpensWithoutEmitting(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	seg := s.Tick(sampleAt("archicad.exe", "C:/Projects/446-IMD3/plan.pln", "plan.pln", base), 0, base)

	assert.Nil(t, seg)
	assert.False(t, s.Paused())
}

func TestSegmenter_AppChangeClosesSegment(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("archicad.exe", "C:/Projects/446-IMD3/plan.pln", "plan.pln", base), 0, base)
	seg := s.Tick(sampleAt("acad.exe", "C:/Projects/512-X/site.dwg", "site.dwg", base.Add(5*time.Second)), 0, base.Add(5*time.Second))

	require.NotNil(t, seg)
	assert.Equal(t, "alice", seg.User)
	assert.Equal(t, "archicad.exe", seg.App)
	assert.Equal(t, "plan.pln", seg.File)
	assert.Equal(t, "C:/Projects/446-IMD3/plan.pln", seg.FilePath)
	assert.InDelta(t, 5.0, seg.Duration, 0.001)
	assert.Equal(t, time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local), seg.HourBucket)
}

func TestSegmenter_CaseInsensitiveAppCompare(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("ACAD.EXE", "C:/p/a.dwg", "a.dwg", base), 0, base)
	seg := s.Tick(sampleAt("acad.exe", "C:/p/a.dwg", "a.dwg", base.Add(time.Second)), 0, base.Add(time.Second))

	assert.Nil(t, seg)
}

func TestSegmenter_StickyFileRuleNeverSplits(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	// [A,X], [A,absent], [A,X] at 1s intervals must stay one segment.
	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	assert.Nil(t, s.Tick(sampleAt("acad.exe", "", "", base.Add(time.Second)), 0, base.Add(time.Second)))
	assert.Nil(t, s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base.Add(2*time.Second)), 0, base.Add(2*time.Second)))

	seg := s.Flush(base.Add(2 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "x.dwg", seg.File)
	assert.InDelta(t, 2.0, seg.Duration, 0.001)
}

func TestSegmenter_UpgradeToSpecificIdentity(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "", "", base), 0, base)
	seg := s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base.Add(3*time.Second)), 0, base.Add(3*time.Second))

	// The fileless span closes and the specific identity opens fresh.
	require.NotNil(t, seg)
	assert.Equal(t, models.NoFile, seg.File)
	assert.InDelta(t, 3.0, seg.Duration, 0.001)

	seg = s.Flush(base.Add(10 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "x.dwg", seg.File)
	assert.InDelta(t, 7.0, seg.Duration, 0.001)
}

func TestSegmenter_IdlePauseFlushesInFlight(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)

	// 59 below-threshold readings keep the session open.
	for i := 1; i < 60; i++ {
		now := base.Add(time.Duration(i) * time.Second)
		assert.Nil(t, s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", now), float64(i), now))
	}

	now := base.Add(60 * time.Second)
	seg := s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", now), 60, now)
	require.NotNil(t, seg)
	assert.InDelta(t, 60.0, seg.Duration, 0.001)
	assert.True(t, s.Paused())

	// Further idle ticks emit nothing.
	assert.Nil(t, s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", now.Add(time.Second)), 61, now.Add(time.Second)))
}

func TestSegmenter_ResumeStartsFreshTimer(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base.Add(10*time.Second)), 70, base.Add(10*time.Second))
	require.True(t, s.Paused())

	// Resume five minutes later: the old timer must not be resumed.
	resume := base.Add(5 * time.Minute)
	assert.Nil(t, s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", resume), 0, resume))

	seg := s.Flush(resume.Add(4 * time.Second))
	require.NotNil(t, seg)
	assert.InDelta(t, 4.0, seg.Duration, 0.001)
}

func TestSegmenter_StickySubstitutionAcrossPause(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	// Close a segment with a known file so it is remembered.
	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	seg := s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base.Add(2*time.Second)), 70, base.Add(2*time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "x.dwg", seg.File)

	// Resume with the same app but no file identity: the last known good
	// file fills in on emit.
	resume := base.Add(3 * time.Minute)
	s.Tick(sampleAt("acad.exe", "", "", resume), 0, resume)
	seg = s.Flush(resume.Add(5 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "x.dwg", seg.File)
	assert.Equal(t, "C:/p/x.dwg", seg.FilePath)
}

func TestSegmenter_NoSubstitutionAcrossApps(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	s.Tick(sampleAt("winword.exe", "", "", base.Add(time.Second)), 0, base.Add(time.Second))

	seg := s.Flush(base.Add(2 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "winword.exe", seg.App)
	assert.Equal(t, models.NoFile, seg.File)
}

func TestSegmenter_OthersSamplesCoalesce(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	first := models.UnknownSample("alice", base)
	second := models.UnknownSample("alice", base.Add(time.Second))
	s.Tick(&first, 0, base)
	assert.Nil(t, s.Tick(&second, 0, base.Add(time.Second)))

	seg := s.Flush(base.Add(2 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, models.CatchAllApp, seg.App)
	assert.Equal(t, models.NoFile, seg.File)
	assert.InDelta(t, 2.0, seg.Duration, 0.001)
}

func TestSegmenter_NilSampleTicksPreserveState(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	for i := 1; i <= 100; i++ {
		assert.Nil(t, s.Tick(nil, 0, base.Add(time.Duration(i)*time.Second)))
	}

	seg := s.Flush(base.Add(101 * time.Second))
	require.NotNil(t, seg)
	assert.Equal(t, "x.dwg", seg.File)
	assert.InDelta(t, 101.0, seg.Duration, 0.001)
}

func TestSegmenter_ClockSkewClampsToZero(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", base), 0, base)
	seg := s.Flush(base.Add(-3 * time.Second))

	require.NotNil(t, seg)
	assert.Equal(t, 0.0, seg.Duration)
}

func TestSegmenter_ContiguousSpanFullyAttributed(t *testing.T) {
	s := NewSegmenter("alice", 60)
	base := time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local)

	apps := []string{"acad.exe", "archicad.exe", "winword.exe", "acad.exe"}
	var total float64
	now := base
	s.Tick(sampleAt(apps[0], "C:/p/a", "a", now), 0, now)
	for i := 1; i < len(apps); i++ {
		now = base.Add(time.Duration(i*7) * time.Second)
		if seg := s.Tick(sampleAt(apps[i], "C:/p/b", "b", now), 0, now); seg != nil {
			total += seg.Duration
		}
	}
	if seg := s.Flush(base.Add(60 * time.Second)); seg != nil {
		total += seg.Duration
	}

	// No gaps and no double counting across the whole active span.
	assert.InDelta(t, 60.0, total, 0.001)
}

func TestSegmenter_FlushWithoutSessionIsNil(t *testing.T) {
	s := NewSegmenter("alice", 60)
	assert.Nil(t, s.Flush(time.Now()))
}

func TestSegmenter_HourBucketFromStartTime(t *testing.T) {
	s := NewSegmenter("alice", 60)
	start := time.Date(2024, 3, 11, 14, 59, 50, 0, time.Local)

	// A segment spanning the hour boundary keeps its start hour.
	s.Tick(sampleAt("acad.exe", "C:/p/x.dwg", "x.dwg", start), 0, start)
	seg := s.Flush(start.Add(30 * time.Second))

	require.NotNil(t, seg)
	assert.Equal(t, time.Date(2024, 3, 11, 14, 0, 0, 0, time.Local), seg.HourBucket)
	assert.Equal(t, "2024-03-11 14:00", seg.HourLabel())
}

package sessions

import (
	"strings"
	"time"

	"github.com/penwyp/timecat/models"
)

// Segmenter turns a stream of point-in-time activity samples into discrete,
// duration-bearing segments. It owns the in-flight segment, the idle gate,
// and the "last known good" file identity used for sticky fallback. A single
// goroutine drives it through Tick; there are no concurrent mutators.
type Segmenter struct {
	user          string
	idleThreshold float64 // seconds

	paused    bool
	current   *models.ActivitySample
	startTime time.Time

	// Sticky fallback: some sample sources intermittently fail to report a
	// file identity for an otherwise-unchanged application window.
	lastGoodApp  string
	lastGoodFile string
	lastGoodPath string
}

// NewSegmenter creates a segmenter for one tracked user.
func NewSegmenter(user string, idleThreshold float64) *Segmenter {
	if idleThreshold <= 0 {
		idleThreshold = models.IdleThreshold
	}
	return &Segmenter{
		user:          user,
		idleThreshold: idleThreshold,
	}
}

// Paused reports whether the idle gate is currently closed.
func (s *Segmenter) Paused() bool {
	return s.paused
}

// SetIdleThreshold updates the idle threshold, for config hot reload.
func (s *Segmenter) SetIdleThreshold(seconds float64) {
	if seconds > 0 {
		s.idleThreshold = seconds
	}
}

// Tick advances the state machine by one poll. sample may be nil when the
// sample source failed for this tick; arbitrarily many nil ticks never
// corrupt in-flight state. The returned segment is non-nil only when a
// segment boundary closed on this tick.
func (s *Segmenter) Tick(sample *models.ActivitySample, idleSeconds float64, now time.Time) *models.Segment {
	// Idle gate. Entering Paused flushes the in-flight segment; leaving it
	// starts fresh so idle time is never attributed to the last focus.
	if idleSeconds >= s.idleThreshold {
		if !s.paused {
			s.paused = true
			return s.Flush(now)
		}
		return nil
	}
	if s.paused {
		s.paused = false
		s.current = nil
	}

	if sample == nil {
		return nil
	}

	if s.current == nil {
		s.open(sample, sample.Timestamp)
		return nil
	}

	if !s.changed(*sample) {
		return nil
	}

	seg := s.close(now)
	s.open(sample, now)
	return seg
}

// Flush closes and returns the in-flight segment, as on a pause transition
// or process shutdown. Returns nil when no session is open.
func (s *Segmenter) Flush(now time.Time) *models.Segment {
	if s.current == nil {
		return nil
	}
	seg := s.close(now)
	s.current = nil
	return seg
}

// changed implements change detection against the current identity.
func (s *Segmenter) changed(sample models.ActivitySample) bool {
	cur := s.current

	// Two consecutive catch-all samples coalesce.
	if strings.EqualFold(sample.App, models.CatchAllApp) && strings.EqualFold(cur.App, models.CatchAllApp) {
		return false
	}

	if !sample.SameApp(cur.App) {
		return true
	}

	// Same app from here on.
	if !sample.HasFile() {
		// Sticky rule: an absent file identity continues the current
		// segment rather than splitting it.
		return false
	}
	if !cur.HasFile() {
		// Upgrade to the more specific identity.
		return true
	}
	return sample.FilePath != cur.FilePath
}

// open starts a new session with the sample as its identity.
func (s *Segmenter) open(sample *models.ActivitySample, start time.Time) {
	cp := *sample
	s.current = &cp
	if start.IsZero() {
		start = time.Now()
	}
	s.startTime = start
}

// close finalizes the current session into a segment. The file identity is
// resolved here: a present file is remembered as last-known-good for its
// app; an absent one is substituted from last-known-good when the app
// matches, and otherwise emitted as "-" with the fallback reset.
func (s *Segmenter) close(now time.Time) *models.Segment {
	cur := s.current

	duration := now.Sub(s.startTime).Seconds()
	if duration < 0 {
		// Clock skew must never produce a negative duration.
		duration = 0
	}

	file := cur.FileName
	path := cur.FilePath
	switch {
	case cur.HasFile():
		s.lastGoodApp = cur.App
		s.lastGoodFile = cur.FileName
		s.lastGoodPath = cur.FilePath
	case strings.EqualFold(cur.App, s.lastGoodApp) && s.lastGoodPath != "":
		file = s.lastGoodFile
		path = s.lastGoodPath
	default:
		file = models.NoFile
		path = ""
		s.lastGoodApp = cur.App
		s.lastGoodFile = ""
		s.lastGoodPath = ""
	}
	if file == "" {
		file = models.NoFile
	}

	user := cur.User
	if user == "" {
		user = s.user
	}

	return &models.Segment{
		User:       user,
		App:        cur.App,
		File:       file,
		FilePath:   path,
		Duration:   duration,
		HourBucket: models.FloorToHour(s.startTime),
	}
}

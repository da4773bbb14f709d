package models

import (
	"strings"
	"time"
)

// ActivitySample represents a single foreground-activity observation from
// the sample source. It is transient and never persisted directly.
type ActivitySample struct {
	User      string    `json:"user"`
	App       string    `json:"app"`
	FilePath  string    `json:"file_path,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UnknownSample produces the catch-all sample used when the sample source
// cannot resolve a foreground identity. Time still accrues under "others"
// so idle-but-not-paused spans are accounted for.
func UnknownSample(user string, now time.Time) ActivitySample {
	return ActivitySample{
		User:      user,
		App:       CatchAllApp,
		FileName:  NoFile,
		Timestamp: now,
	}
}

// HasFile reports whether the sample carries a usable file identity.
func (s ActivitySample) HasFile() bool {
	return s.FilePath != "" && s.FilePath != NoFile
}

// SameApp compares application identity case-insensitively.
func (s ActivitySample) SameApp(app string) bool {
	return strings.EqualFold(s.App, app)
}

// FloorToHour rounds t down to the start of its hour in t's location.
func FloorToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// Segment is one contiguous attribution of time to a fixed
// (user, app, file) identity, labeled with the hour its timer started in.
type Segment struct {
	User       string
	App        string
	File       string  // file name, NoFile when absent
	FilePath   string  // full path, empty when absent
	Duration   float64 // seconds, always >= 0
	HourBucket time.Time
}

// HourLabel formats the segment's hour bucket for persisted rows.
func (s Segment) HourLabel() string {
	return s.HourBucket.Format(HourBucketLayout)
}

// DailyRow is one staged row in a daily bucket, merged in verbatim from an
// hourly bucket. No aggregation happens at this level.
type DailyRow struct {
	DateHour string
	File     string
	Duration float64
	App      string
	FilePath string
}

// YearlyUserKey is the composite aggregation key of the yearly per-user
// file. Rows with equal keys are summed on merge.
type YearlyUserKey struct {
	DateHour string
	File     string
	App      string
	Project  string
}

// YearlyUserRow is one aggregated row of a yearly per-user file.
type YearlyUserRow struct {
	YearlyUserKey
	Duration float64
}

// Before orders yearly rows for deterministic, diff-friendly output.
func (k YearlyUserKey) Before(o YearlyUserKey) bool {
	if k.DateHour != o.DateHour {
		return k.DateHour < o.DateHour
	}
	if k.File != o.File {
		return k.File < o.File
	}
	if k.App != o.App {
		return k.App < o.App
	}
	return k.Project < o.Project
}

// UserTotal is one row of the project-totals report.
type UserTotal struct {
	User  string  `json:"user"`
	Total float64 `json:"total_seconds"`
}

// ProjectReport is the result of the project-totals query. An empty Users
// slice is a valid, reportable outcome, not an error.
type ProjectReport struct {
	Project    string      `json:"project"`
	Users      []UserTotal `json:"users"`
	GrandTotal float64     `json:"grand_total_seconds"`
}

// ActivityReport is the result of the user-activity-range query, sorted by
// DateHour ascending.
type ActivityReport struct {
	User string          `json:"user"`
	Rows []YearlyUserRow `json:"rows"`
}

package fileio

import (
	"fmt"
	"strconv"

	"github.com/penwyp/timecat/models"
)

// SegmentRow encodes a segment as an hourly bucket row:
// User, App, File, Duration(seconds), FilePath, DateHour.
func SegmentRow(seg *models.Segment) []string {
	return []string{
		seg.User,
		seg.App,
		seg.File,
		formatDuration(seg.Duration),
		seg.FilePath,
		seg.HourLabel(),
	}
}

// ParseHourlyRow decodes one hourly bucket row into a daily staging row.
// fallbackHour labels legacy rows that predate the DateHour column; it is
// derived from the bucket's filename.
func ParseHourlyRow(row []string, fallbackHour string) (models.DailyRow, string, error) {
	if len(row) < 4 {
		return models.DailyRow{}, "", fmt.Errorf("hourly row has %d fields, want at least 4", len(row))
	}
	duration, err := strconv.ParseFloat(row[3], 64)
	if err != nil {
		return models.DailyRow{}, "", fmt.Errorf("hourly row duration %q: %w", row[3], err)
	}

	dr := models.DailyRow{
		DateHour: fallbackHour,
		File:     row[2],
		Duration: duration,
		App:      row[1],
	}
	if len(row) >= 5 {
		dr.FilePath = row[4]
	}
	if len(row) >= 6 && row[5] != "" {
		dr.DateHour = row[5]
	}
	return dr, row[0], nil
}

// DailyRowRecord encodes a daily staging row:
// DateHour, File, Duration(seconds), App, FilePath.
func DailyRowRecord(r models.DailyRow) []string {
	return []string{
		r.DateHour,
		r.File,
		formatDuration(r.Duration),
		r.App,
		r.FilePath,
	}
}

// ParseDailyRow decodes one daily bucket row.
func ParseDailyRow(row []string) (models.DailyRow, error) {
	if len(row) < 4 {
		return models.DailyRow{}, fmt.Errorf("daily row has %d fields, want at least 4", len(row))
	}
	duration, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return models.DailyRow{}, fmt.Errorf("daily row duration %q: %w", row[2], err)
	}
	dr := models.DailyRow{
		DateHour: row[0],
		File:     row[1],
		Duration: duration,
		App:      row[3],
	}
	if len(row) >= 5 {
		dr.FilePath = row[4]
	}
	return dr, nil
}

// YearlyUserRecord encodes one aggregated yearly per-user row:
// DateHour, File, Duration(seconds), App, Project.
func YearlyUserRecord(r models.YearlyUserRow) []string {
	return []string{
		r.DateHour,
		r.File,
		formatDuration(r.Duration),
		r.App,
		r.Project,
	}
}

// ParseYearlyUserRow decodes one yearly per-user row.
func ParseYearlyUserRow(row []string) (models.YearlyUserRow, error) {
	if len(row) < 5 {
		return models.YearlyUserRow{}, fmt.Errorf("yearly user row has %d fields, want 5", len(row))
	}
	duration, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return models.YearlyUserRow{}, fmt.Errorf("yearly user row duration %q: %w", row[2], err)
	}
	return models.YearlyUserRow{
		YearlyUserKey: models.YearlyUserKey{
			DateHour: row[0],
			File:     row[1],
			App:      row[3],
			Project:  row[4],
		},
		Duration: duration,
	}, nil
}

// YearlyProjectRecord encodes one yearly project row: Project, Duration.
func YearlyProjectRecord(project string, duration float64) []string {
	return []string{project, formatDuration(duration)}
}

// ParseYearlyProjectRow decodes one yearly project row.
func ParseYearlyProjectRow(row []string) (project string, duration float64, err error) {
	if len(row) < 2 {
		return "", 0, fmt.Errorf("yearly project row has %d fields, want 2", len(row))
	}
	duration, err = strconv.ParseFloat(row[1], 64)
	if err != nil {
		return "", 0, fmt.Errorf("yearly project row duration %q: %w", row[1], err)
	}
	return row[0], duration, nil
}

// formatDuration keeps durations lossless without trailing noise.
func formatDuration(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

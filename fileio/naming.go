package fileio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/penwyp/timecat/models"
)

// Filename conventions are an external contract: files for different
// periods must never collide and must round-trip losslessly.
//
//	hourly  HH-00_DD_MM_YYYY.csv
//	daily   <user>_DD_MM_YYYY.csv
//	yearly  <year>-<user>.csv and <year>-projects.csv

// HourlyFilename returns the hourly bucket path for the hour containing t.
func HourlyFilename(dir string, t time.Time) string {
	return filepath.Join(dir, models.FloorToHour(t).Format(models.HourlyFileLayout)+".csv")
}

// DailyFilename returns the daily bucket path for user on t's date.
func DailyFilename(dir, user string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", user, t.Format(models.DailyFileLayout)))
}

// YearlyUserFilename returns the yearly per-user aggregate path.
func YearlyUserFilename(reportsDir string, year int, user string) string {
	return filepath.Join(reportsDir, fmt.Sprintf("%d-%s.csv", year, user))
}

// YearlyProjectFilename returns the global yearly project aggregate path.
func YearlyProjectFilename(reportsDir string, year int) string {
	return filepath.Join(reportsDir, fmt.Sprintf("%d-projects.csv", year))
}

// ParseHourlyFilename recovers the hour a bucket file covers from its name.
func ParseHourlyFilename(path string) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	t, err := time.ParseInLocation(models.HourlyFileLayout, base, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("not an hourly bucket filename: %s", path)
	}
	return t, nil
}

// ParseDailyFilename recovers the user and date from a daily bucket name.
func ParseDailyFilename(path string) (user string, date time.Time, err error) {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	// The date part is DD_MM_YYYY, so the user is everything before the
	// last three underscore-separated fields.
	parts := strings.Split(base, "_")
	if len(parts) < 4 {
		return "", time.Time{}, fmt.Errorf("not a daily bucket filename: %s", path)
	}
	datePart := strings.Join(parts[len(parts)-3:], "_")
	user = strings.Join(parts[:len(parts)-3], "_")
	if user == "" {
		return "", time.Time{}, fmt.Errorf("not a daily bucket filename: %s", path)
	}
	date, err = time.ParseInLocation(models.DailyFileLayout, datePart, time.Local)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("not a daily bucket filename: %s", path)
	}
	return user, date, nil
}

// ParseYearlyUserFilename recovers year and user from a yearly per-user
// aggregate name. The projects file is not a per-user file.
func ParseYearlyUserFilename(path string) (year int, user string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(path), ".csv")
	if base == filepath.Base(path) {
		return 0, "", false
	}
	idx := strings.Index(base, "-")
	if idx != 4 {
		return 0, "", false
	}
	if _, err := fmt.Sscanf(base[:idx], "%d", &year); err != nil || year < 1970 {
		return 0, "", false
	}
	user = base[idx+1:]
	if user == "" || user == "projects" {
		return 0, "", false
	}
	return year, user, true
}

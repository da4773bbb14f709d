package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
)

// UserActivity returns every aggregated row of the given user whose hour
// bucket falls inside the inclusive [from, to] range, across all yearly
// files, sorted by hour ascending. Rows with an unparseable hour label are
// skipped with a notice.
func UserActivity(reportsDir, user string, from, to time.Time) (*models.ActivityReport, error) {
	files, err := fileio.YearlyUserFiles(reportsDir)
	if err != nil {
		return nil, fmt.Errorf("scan yearly reports in %s: %w", reportsDir, err)
	}

	report := &models.ActivityReport{User: user, Rows: []models.YearlyUserRow{}}
	for _, f := range files {
		if f.User != user {
			continue
		}
		_, rows, err := fileio.ReadRows(f.Path)
		if err != nil {
			logging.LogWarnf("user activity: cannot read %s: %v, skipping", f.Path, err)
			continue
		}
		for i, row := range rows {
			r, err := fileio.ParseYearlyUserRow(row)
			if err != nil {
				logging.LogWarnf("user activity: %s row %d: %v, skipping", f.Path, i+1, err)
				continue
			}
			hour, err := time.ParseInLocation(models.HourBucketLayout, r.DateHour, time.Local)
			if err != nil {
				logging.LogWarnf("user activity: %s row %d: bad hour label %q, skipping", f.Path, i+1, r.DateHour)
				continue
			}
			if hour.Before(from) || hour.After(to) {
				continue
			}
			report.Rows = append(report.Rows, r)
		}
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		if report.Rows[i].DateHour != report.Rows[j].DateHour {
			return report.Rows[i].DateHour < report.Rows[j].DateHour
		}
		return report.Rows[i].File < report.Rows[j].File
	})
	return report, nil
}

package reports

import (
	"fmt"
	"sort"

	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
	"github.com/penwyp/timecat/rollup"
)

// ProjectTotals scans every user's yearly aggregates and sums the time each
// user spent on the given project, plus a grand total across users. An
// empty result is a distinct, reportable outcome, not an error.
func ProjectTotals(reportsDir, project string) (*models.ProjectReport, error) {
	files, err := fileio.YearlyUserFiles(reportsDir)
	if err != nil {
		return nil, fmt.Errorf("scan yearly reports in %s: %w", reportsDir, err)
	}

	totals := make(map[string]float64)
	for _, f := range files {
		_, rows, err := fileio.ReadRows(f.Path)
		if err != nil {
			logging.LogWarnf("project totals: cannot read %s: %v, skipping", f.Path, err)
			continue
		}
		for i, row := range rows {
			r, err := fileio.ParseYearlyUserRow(row)
			if err != nil {
				logging.LogWarnf("project totals: %s row %d: %v, skipping", f.Path, i+1, err)
				continue
			}
			rowProject := r.Project
			if rowProject == "" {
				rowProject = rollup.ProjectOf(r.File)
			}
			if rowProject == project {
				totals[f.User] += r.Duration
			}
		}
	}

	report := &models.ProjectReport{
		Project: project,
		Users:   make([]models.UserTotal, 0, len(totals)),
	}
	for user, total := range totals {
		report.Users = append(report.Users, models.UserTotal{User: user, Total: total})
		report.GrandTotal += total
	}
	sort.Slice(report.Users, func(i, j int) bool {
		return report.Users[i].User < report.Users[j].User
	})
	return report, nil
}

package rollup

import (
	"fmt"
	"os"
	"sort"
	"time"

	trackererrors "github.com/penwyp/timecat/errors"
	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
)

// Engine merges closed buckets upward: hourly rows into the day's staging
// bucket, and a completed day into the two yearly aggregates. A source
// bucket is treated as consumed only after its data is durably merged; the
// delete always comes last so a crash leaves the source intact for retry.
type Engine struct {
	reportsDir string
	ledger     *MergeLedger
}

// NewEngine creates a rollup engine writing yearly aggregates under
// reportsDir. ledger may be nil; merges then run without an audit trail.
func NewEngine(reportsDir string, ledger *MergeLedger) *Engine {
	return &Engine{
		reportsDir: reportsDir,
		ledger:     ledger,
	}
}

// MergeHourly copies every segment row of the closed hourly bucket verbatim
// into the daily staging bucket, then deletes the hourly bucket. No
// aggregation happens here; the daily bucket keeps full per-segment
// fidelity for project extraction later.
func (e *Engine) MergeHourly(hourlyPath, dailyPath string) error {
	if _, err := os.Stat(hourlyPath); os.IsNotExist(err) {
		// A prior run may have merged and deleted it already.
		logging.LogInfof("hourly bucket %s missing at merge time, nothing to do", hourlyPath)
		return nil
	}

	fallbackHour := "Unknown"
	if hour, err := fileio.ParseHourlyFilename(hourlyPath); err == nil {
		fallbackHour = hour.Format(models.HourBucketLayout)
	}

	_, rows, err := fileio.ReadRows(hourlyPath)
	if err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("read hourly bucket %s", hourlyPath), err)
	}

	staged := make([][]string, 0, len(rows))
	for i, row := range rows {
		dr, _, err := fileio.ParseHourlyRow(row, fallbackHour)
		if err != nil {
			logging.LogWarnf("hourly bucket %s row %d: %v, skipping", hourlyPath, i+1, err)
			continue
		}
		staged = append(staged, fileio.DailyRowRecord(dr))
	}

	if err := fileio.AppendRows(dailyPath, models.DailyHeader, staged); err != nil {
		// The hourly bucket stays on disk so a restart can retry.
		return trackererrors.NewWriteError(fmt.Sprintf("append to daily bucket %s", dailyPath), err)
	}

	if err := e.ledger.Record(MergeKindHourly, hourlyPath, len(staged)); err != nil {
		logging.LogWarnf("ledger record for %s failed: %v", hourlyPath, err)
	}
	if err := os.Remove(hourlyPath); err != nil {
		logging.LogWarnf("failed to delete merged hourly bucket %s: %v", hourlyPath, err)
		return nil
	}

	logging.LogInfof("merged hourly bucket %s into %s (%d rows)", hourlyPath, dailyPath, len(staged))
	return nil
}

// MergeDaily merges a completed daily bucket into the yearly per-user and
// yearly project aggregates, then deletes the daily bucket. Both aggregate
// writes are atomic and preceded by a rollback copy; the delete happens
// only after both succeeded.
func (e *Engine) MergeDaily(dailyPath string) error {
	if _, err := os.Stat(dailyPath); os.IsNotExist(err) {
		logging.LogInfof("daily bucket %s missing at merge time, nothing to do", dailyPath)
		return nil
	}

	user, date, err := fileio.ParseDailyFilename(dailyPath)
	if err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("cannot key yearly files from %s", dailyPath), err)
	}
	year := date.Year()

	_, rows, err := fileio.ReadRows(dailyPath)
	if err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("read daily bucket %s", dailyPath), err)
	}

	dayRows := make([]models.DailyRow, 0, len(rows))
	for i, row := range rows {
		dr, err := fileio.ParseDailyRow(row)
		if err != nil {
			logging.LogWarnf("daily bucket %s row %d: %v, skipping", dailyPath, i+1, err)
			continue
		}
		dayRows = append(dayRows, dr)
	}

	if err := os.MkdirAll(e.reportsDir, 0755); err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("create reports dir %s", e.reportsDir), err)
	}

	if err := e.mergeYearlyUser(dayRows, year, user); err != nil {
		return err
	}
	if err := e.mergeYearlyProjects(dayRows, year); err != nil {
		return err
	}

	if err := e.ledger.Record(MergeKindDaily, dailyPath, len(dayRows)); err != nil {
		logging.LogWarnf("ledger record for %s failed: %v", dailyPath, err)
	}
	if err := os.Remove(dailyPath); err != nil {
		logging.LogWarnf("failed to delete merged daily bucket %s: %v", dailyPath, err)
		return nil
	}

	logging.LogInfof("merged daily bucket %s into %d aggregates (%d rows)", dailyPath, year, len(dayRows))
	return nil
}

// mergeYearlyUser folds day rows into the per-user aggregate keyed by
// (DateHour, File, App, Project), summing durations on key collision.
func (e *Engine) mergeYearlyUser(dayRows []models.DailyRow, year int, user string) error {
	path := fileio.YearlyUserFilename(e.reportsDir, year, user)

	agg := make(map[models.YearlyUserKey]float64)
	if _, err := os.Stat(path); err == nil {
		_, rows, err := fileio.ReadRows(path)
		if err != nil {
			return trackererrors.NewWriteError(fmt.Sprintf("read yearly user aggregate %s", path), err)
		}
		for i, row := range rows {
			r, err := fileio.ParseYearlyUserRow(row)
			if err != nil {
				logging.LogWarnf("yearly user aggregate %s row %d: %v, skipping", path, i+1, err)
				continue
			}
			agg[r.YearlyUserKey] += r.Duration
		}
	}

	for _, dr := range dayRows {
		key := models.YearlyUserKey{
			DateHour: dr.DateHour,
			File:     dr.File,
			App:      dr.App,
			Project:  ProjectOf(identityOf(dr)),
		}
		agg[key] += dr.Duration
	}

	keys := make([]models.YearlyUserKey, 0, len(agg))
	for key := range agg {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make([][]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, fileio.YearlyUserRecord(models.YearlyUserRow{
			YearlyUserKey: key,
			Duration:      agg[key],
		}))
	}

	if err := fileio.Backup(path); err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("backup yearly user aggregate %s", path), err)
	}
	if err := fileio.WriteAtomic(path, models.YearlyUserHeader, out); err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("write yearly user aggregate %s", path), err)
	}
	return nil
}

// mergeYearlyProjects folds day rows into the global project aggregate.
// Unresolved identifiers stay under the Unknown sentinel rather than being
// dropped.
func (e *Engine) mergeYearlyProjects(dayRows []models.DailyRow, year int) error {
	path := fileio.YearlyProjectFilename(e.reportsDir, year)

	agg := make(map[string]float64)
	if _, err := os.Stat(path); err == nil {
		_, rows, err := fileio.ReadRows(path)
		if err != nil {
			return trackererrors.NewWriteError(fmt.Sprintf("read yearly project aggregate %s", path), err)
		}
		for i, row := range rows {
			project, duration, err := fileio.ParseYearlyProjectRow(row)
			if err != nil {
				logging.LogWarnf("yearly project aggregate %s row %d: %v, skipping", path, i+1, err)
				continue
			}
			agg[project] += duration
		}
	}

	for _, dr := range dayRows {
		agg[ProjectOf(identityOf(dr))] += dr.Duration
	}

	projects := make([]string, 0, len(agg))
	for project := range agg {
		projects = append(projects, project)
	}
	sort.Strings(projects)

	out := make([][]string, 0, len(projects))
	for _, project := range projects {
		out = append(out, fileio.YearlyProjectRecord(project, agg[project]))
	}

	if err := fileio.Backup(path); err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("backup yearly project aggregate %s", path), err)
	}
	if err := fileio.WriteAtomic(path, models.YearlyProjectHeader, out); err != nil {
		return trackererrors.NewWriteError(fmt.Sprintf("write yearly project aggregate %s", path), err)
	}
	return nil
}

// Recover re-attempts merges for buckets a previous run left behind. The
// bucket currently open for writing and the daily bucket for today are
// skipped; their periods are still accumulating.
func (e *Engine) Recover(bucketDir, user, excludeHourly string, now time.Time) error {
	hourlies, err := fileio.LeftoverHourlyBuckets(bucketDir, excludeHourly)
	if err != nil {
		return fmt.Errorf("scan for leftover hourly buckets: %w", err)
	}
	for _, path := range hourlies {
		hour, err := fileio.ParseHourlyFilename(path)
		if err != nil {
			logging.LogWarnf("recovery: %v, skipping", err)
			continue
		}
		if seen, _ := e.ledger.Seen(MergeKindHourly, path); seen {
			logging.LogWarnf("recovery: hourly bucket %s was already merged per ledger; merging the leftover copy again", path)
		}
		if err := e.MergeHourly(path, fileio.DailyFilename(bucketDir, user, hour)); err != nil {
			return err
		}
	}

	dailies, err := fileio.LeftoverDailyBuckets(bucketDir)
	if err != nil {
		return fmt.Errorf("scan for leftover daily buckets: %w", err)
	}
	today := now.Format(models.DailyFileLayout)
	for _, path := range dailies {
		_, date, err := fileio.ParseDailyFilename(path)
		if err != nil {
			continue
		}
		if date.Format(models.DailyFileLayout) == today {
			// Still accumulating.
			continue
		}
		if seen, _ := e.ledger.Seen(MergeKindDaily, path); seen {
			logging.LogWarnf("recovery: daily bucket %s was already merged per ledger; merging the leftover copy again", path)
		}
		if err := e.MergeDaily(path); err != nil {
			return err
		}
	}
	return nil
}

// identityOf picks the richest file identity a row carries for project
// extraction: the full path when present, the bare file name otherwise.
func identityOf(dr models.DailyRow) string {
	if dr.FilePath != "" && dr.FilePath != models.NoFile {
		return dr.FilePath
	}
	return dr.File
}

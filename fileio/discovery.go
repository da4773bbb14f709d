package fileio

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var (
	hourlyNamePattern = regexp.MustCompile(`^\d{2}-00_\d{2}_\d{2}_\d{4}\.csv$`)
	dailyNamePattern  = regexp.MustCompile(`^.+_\d{2}_\d{2}_\d{4}\.csv$`)
)

// YearlyUserFile is a discovered yearly per-user aggregate.
type YearlyUserFile struct {
	Path string
	Year int
	User string
}

// LeftoverHourlyBuckets lists hourly bucket files in dir, excluding the one
// at excludePath (the bucket currently open for writing). Sorted by name so
// recovery replays in period order.
func LeftoverHourlyBuckets(dir, excludePath string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || !hourlyNamePattern.MatchString(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if p == excludePath {
			continue
		}
		found = append(found, p)
	}
	sort.Strings(found)
	return found, nil
}

// LeftoverDailyBuckets lists daily bucket files in dir. Hourly bucket names
// also match the loose daily pattern, so they are filtered out explicitly.
func LeftoverDailyBuckets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var found []string
	for _, e := range entries {
		if e.IsDir() || hourlyNamePattern.MatchString(e.Name()) {
			continue
		}
		if !dailyNamePattern.MatchString(e.Name()) {
			continue
		}
		if _, _, err := ParseDailyFilename(e.Name()); err != nil {
			continue
		}
		found = append(found, filepath.Join(dir, e.Name()))
	}
	sort.Strings(found)
	return found, nil
}

// YearlyUserFiles lists every yearly per-user aggregate in reportsDir,
// across all years. The projects aggregate and rollback copies are skipped.
func YearlyUserFiles(reportsDir string) ([]YearlyUserFile, error) {
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var found []YearlyUserFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		year, user, ok := ParseYearlyUserFilename(e.Name())
		if !ok {
			continue
		}
		found = append(found, YearlyUserFile{
			Path: filepath.Join(reportsDir, e.Name()),
			Year: year,
			User: user,
		})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].User != found[j].User {
			return found[i].User < found[j].User
		}
		return found[i].Year < found[j].Year
	})
	return found, nil
}

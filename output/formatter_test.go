package output

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/models"
)

func TestFormatProjectReport(t *testing.T) {
	f := NewConsoleFormatter()
	out := f.FormatProjectReport(&models.ProjectReport{
		Project: "446",
		Users: []models.UserTotal{
			{User: "alice", Total: 160},
			{User: "bob", Total: 25},
		},
		GrandTotal: 185,
	})

	assert.Contains(t, out, "Project 446")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "160.0")
	assert.Contains(t, out, models.ProjectAllUsers)
	assert.Contains(t, out, "185.0")
}

func TestFormatProjectReport_Empty(t *testing.T) {
	f := NewConsoleFormatter()
	out := f.FormatProjectReport(&models.ProjectReport{Project: "999"})

	assert.Contains(t, out, "no recorded time")
	assert.NotContains(t, out, models.ProjectAllUsers)
}

func TestFormatActivityReport(t *testing.T) {
	f := NewConsoleFormatter()
	out := f.FormatActivityReport(&models.ActivityReport{
		User: "alice",
		Rows: []models.YearlyUserRow{
			{
				YearlyUserKey: models.YearlyUserKey{
					DateHour: "2024-03-11 14:00",
					File:     "plan.dwg",
					App:      "acad.exe",
					Project:  "446",
				},
				Duration: 60,
			},
		},
	})

	assert.Contains(t, out, "Activity for alice")
	assert.Contains(t, out, "2024-03-11 14:00")
	assert.Contains(t, out, "plan.dwg")
	assert.Contains(t, out, "1 rows, 60.0 seconds total")
}

func TestFormatActivityReport_Empty(t *testing.T) {
	f := NewConsoleFormatter()
	out := f.FormatActivityReport(&models.ActivityReport{User: "alice"})

	assert.Contains(t, out, "no activity in the requested range")
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatJSON(&models.ProjectReport{Project: "446", GrandTotal: 12})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"project"`)
	assert.Contains(t, out, `"grand_total_seconds"`)
}

func TestWriteProjectCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.csv")
	require.NoError(t, WriteProjectCSV(path, &models.ProjectReport{
		Project: "446",
		Users: []models.UserTotal{
			{User: "alice", Total: 160},
		},
		GrandTotal: 160,
	}))

	header, rows, err := fileio.ReadRows(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"User", "Total(seconds)"}, header)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "160.0"}, rows[0])
	assert.Equal(t, []string{models.ProjectAllUsers, "160.0"}, rows[1])
}

func TestWriteActivityCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.csv")
	require.NoError(t, WriteActivityCSV(path, &models.ActivityReport{
		User: "alice",
		Rows: []models.YearlyUserRow{
			{
				YearlyUserKey: models.YearlyUserKey{
					DateHour: "2024-03-11 14:00",
					File:     "plan.dwg",
					App:      "acad.exe",
					Project:  "446",
				},
				Duration: 60,
			},
		},
	}))

	header, rows, err := fileio.ReadRows(path)
	require.NoError(t, err)
	assert.Equal(t, models.YearlyUserHeader, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "plan.dwg", rows[0][1])
}

package output

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/models"
)

// ConsoleFormatter renders report query results for the terminal.
type ConsoleFormatter struct {
	header lipgloss.Style
	row    lipgloss.Style
	total  lipgloss.Style
	muted  lipgloss.Style
}

// NewConsoleFormatter creates a formatter with the default styling.
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		row:    lipgloss.NewStyle(),
		total:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// FormatProjectReport renders the project-totals query result.
func (f *ConsoleFormatter) FormatProjectReport(r *models.ProjectReport) string {
	var lines []string
	lines = append(lines, f.header.Render(fmt.Sprintf("Project %s — time by user", r.Project)))

	if len(r.Users) == 0 {
		lines = append(lines, f.muted.Render("no recorded time for this project"))
		return strings.Join(lines, "\n")
	}

	width := len("User")
	for _, u := range r.Users {
		if len(u.User) > width {
			width = len(u.User)
		}
	}

	lines = append(lines, f.header.Render(fmt.Sprintf("%-*s  %14s", width, "User", "Seconds")))
	for _, u := range r.Users {
		lines = append(lines, f.row.Render(fmt.Sprintf("%-*s  %14.1f", width, u.User, u.Total)))
	}
	lines = append(lines, f.total.Render(fmt.Sprintf("%-*s  %14.1f", width, models.ProjectAllUsers, r.GrandTotal)))
	return strings.Join(lines, "\n")
}

// FormatActivityReport renders the user-activity-range query result.
func (f *ConsoleFormatter) FormatActivityReport(r *models.ActivityReport) string {
	var lines []string
	lines = append(lines, f.header.Render(fmt.Sprintf("Activity for %s", r.User)))

	if len(r.Rows) == 0 {
		lines = append(lines, f.muted.Render("no activity in the requested range"))
		return strings.Join(lines, "\n")
	}

	fileWidth := len("File")
	appWidth := len("App")
	for _, row := range r.Rows {
		if len(row.File) > fileWidth {
			fileWidth = len(row.File)
		}
		if len(row.App) > appWidth {
			appWidth = len(row.App)
		}
	}

	lines = append(lines, f.header.Render(fmt.Sprintf("%-16s  %-*s  %12s  %-*s  %s",
		"DateHour", fileWidth, "File", "Seconds", appWidth, "App", "Project")))
	var total float64
	for _, row := range r.Rows {
		total += row.Duration
		lines = append(lines, f.row.Render(fmt.Sprintf("%-16s  %-*s  %12.1f  %-*s  %s",
			row.DateHour, fileWidth, row.File, row.Duration, appWidth, row.App, row.Project)))
	}
	lines = append(lines, f.total.Render(fmt.Sprintf("%d rows, %.1f seconds total", len(r.Rows), total)))
	return strings.Join(lines, "\n")
}

// FormatJSON renders any report as indented JSON.
func FormatJSON(v interface{}) (string, error) {
	data, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report as JSON: %w", err)
	}
	return string(data), nil
}

// WriteProjectCSV writes the project-totals report to a CSV file, with the
// grand-total row trailing, matching the persisted report contract.
func WriteProjectCSV(path string, r *models.ProjectReport) error {
	rows := make([][]string, 0, len(r.Users)+1)
	for _, u := range r.Users {
		rows = append(rows, []string{u.User, fmt.Sprintf("%.1f", u.Total)})
	}
	rows = append(rows, []string{models.ProjectAllUsers, fmt.Sprintf("%.1f", r.GrandTotal)})
	return fileio.WriteAtomic(path, []string{"User", "Total(seconds)"}, rows)
}

// WriteActivityCSV writes the user-activity report to a CSV file, ordered
// as returned by the query.
func WriteActivityCSV(path string, r *models.ActivityReport) error {
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, fileio.YearlyUserRecord(row))
	}
	return fileio.WriteAtomic(path, models.YearlyUserHeader, rows)
}

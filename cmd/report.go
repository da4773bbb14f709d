package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
	"github.com/penwyp/timecat/output"
	"github.com/penwyp/timecat/reports"
)

var (
	reportOutput     string
	reportOutputFile string
	activityFrom     string
	activityTo       string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Query the yearly aggregates",
	Long: `Read-only queries over the yearly aggregate files.

The queries never modify aggregates; they can run while the tracker is
running or offline against a copied reports directory.`,
}

var reportProjectCmd = &cobra.Command{
	Use:   "project NAME",
	Short: "Total time per user for one project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile)

		report, err := reports.ProjectTotals(cfg.Data.ReportsDir, args[0])
		if err != nil {
			return err
		}

		if reportOutputFile != "" {
			if err := output.WriteProjectCSV(reportOutputFile, report); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", reportOutputFile)
		}

		switch reportOutput {
		case "json":
			rendered, err := output.FormatJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
		default:
			fmt.Println(output.NewConsoleFormatter().FormatProjectReport(report))
		}
		return nil
	},
}

var reportActivityCmd = &cobra.Command{
	Use:   "activity USER",
	Short: "A user's activity log within a date range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile)

		from, to, err := parseDateRange(activityFrom, activityTo)
		if err != nil {
			return err
		}

		report, err := reports.UserActivity(cfg.Data.ReportsDir, args[0], from, to)
		if err != nil {
			return err
		}

		if reportOutputFile != "" {
			if err := output.WriteActivityCSV(reportOutputFile, report); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", reportOutputFile)
		}

		switch reportOutput {
		case "json":
			rendered, err := output.FormatJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
		default:
			fmt.Println(output.NewConsoleFormatter().FormatActivityReport(report))
		}
		return nil
	},
}

func init() {
	reportCmd.PersistentFlags().StringVarP(&reportOutput, "output", "o", "table", "output format (table, json)")
	reportCmd.PersistentFlags().StringVar(&reportOutputFile, "output-file", "", "also write the report as CSV to this file")
	reportActivityCmd.Flags().StringVar(&activityFrom, "from", "", "range start, YYYY-MM-DD (required)")
	reportActivityCmd.Flags().StringVar(&activityTo, "to", "", "range end, YYYY-MM-DD inclusive (required)")
	_ = reportActivityCmd.MarkFlagRequired("from")
	_ = reportActivityCmd.MarkFlagRequired("to")

	reportCmd.AddCommand(reportProjectCmd)
	reportCmd.AddCommand(reportActivityCmd)
	rootCmd.AddCommand(reportCmd)
}

// parseDateRange turns the date flags into an inclusive instant range, the
// end date extended to the end of its day.
func parseDateRange(fromStr, toStr string) (time.Time, time.Time, error) {
	from, err := time.ParseInLocation(models.ReportDateLayout, fromStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from date %q: use YYYY-MM-DD", fromStr)
	}
	to, err := time.ParseInLocation(models.ReportDateLayout, toStr, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to date %q: use YYYY-MM-DD", toStr)
	}
	to = to.Add(24*time.Hour - time.Second)
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", fromStr, toStr)
	}
	return from, to, nil
}

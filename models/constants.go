package models

import "time"

// Idle detection constants
const (
	IdleThreshold = 60.0 // seconds without input before tracking pauses
)

// Poll loop constants
const (
	DefaultPollInterval = 100 * time.Millisecond
	MinPollInterval     = 50 * time.Millisecond
	MaxPollInterval     = 5 * time.Second
)

// Identity placeholders
const (
	CatchAllApp     = "others"  // foreground app we do not track by name
	NoFile          = "-"       // sample carries no file identity
	UnknownUser     = "Unknown" // sample source could not resolve the user
	UnknownProject  = "Unknown" // no project token found in the file path
	ProjectAllUsers = "Total"   // grand-total row label in project reports
)

// Time layouts for persisted records and filenames
const (
	HourBucketLayout  = "2006-01-02 15:00"    // DateHour column
	HourlyFileLayout  = "15-00_02_01_2006"    // hourly bucket filename stem
	DailyFileLayout   = "02_01_2006"          // daily bucket filename date part
	ReportDateLayout  = "2006-01-02"          // report CLI date flags
)

// CSV headers, stable across schema levels
var (
	HourlyHeader        = []string{"User", "App", "File", "Duration(seconds)", "FilePath", "DateHour"}
	DailyHeader         = []string{"DateHour", "File", "Duration(seconds)", "App", "FilePath"}
	YearlyUserHeader    = []string{"DateHour", "File", "Duration(seconds)", "App", "Project"}
	YearlyProjectHeader = []string{"Project", "Duration(seconds)"}
)

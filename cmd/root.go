package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/penwyp/timecat/config"
	"github.com/penwyp/timecat/internal"
	"github.com/penwyp/timecat/logging"
)

var (
	cfgFile  string
	logLevel string
	debug    bool
	verbose  bool
	// Tracker flags
	trackUser    string
	pollInterval time.Duration
	replayFile   string
	bucketDir    string
	reportsDir   string
	watchConfig  bool
)

var rootCmd = &cobra.Command{
	Use:   "timecat",
	Short: "Activity time tracker",
	Long: `timecat attributes active-computer time to (application, file, project)
tuples and rolls the attributions up through hourly, daily and yearly
aggregates that the report commands query.

Running timecat with no subcommand starts the tracker loop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		if debug {
			cfg.Debug.Enabled = true
			cfg.App.LogLevel = "debug"
		}
		logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile)

		app, err := internal.NewApplication(cfg)
		if err != nil {
			return fmt.Errorf("failed to create application: %w", err)
		}

		if watchConfig && viper.ConfigFileUsed() != "" {
			if err := app.WatchConfig(viper.ConfigFileUsed()); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Starting timecat tracker...\n")
			fmt.Fprintf(os.Stderr, "Configuration: %+v\n", cfg)
		}

		return app.Run()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./timecat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&bucketDir, "bucket-dir", "", "directory for hourly/daily bucket files")
	rootCmd.PersistentFlags().StringVar(&reportsDir, "reports-dir", "", "directory for yearly aggregate files")

	// Tracker flags (default command behavior)
	rootCmd.Flags().StringVarP(&trackUser, "user", "u", "", "tracked user name (default: current OS user)")
	rootCmd.Flags().DurationVarP(&pollInterval, "poll-interval", "p", 0, "sample poll interval (e.g. 100ms)")
	rootCmd.Flags().StringVar(&replayFile, "replay", "", "drive the tracker from a JSONL sample log")
	rootCmd.Flags().BoolVarP(&watchConfig, "watch-config", "w", false, "hot-reload tunables when the config file changes")

	// Bind flags to viper
	if err := viper.BindPFlag("app.log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind log-level flag: %v\n", err)
	}
	if err := viper.BindPFlag("debug.enabled", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind debug flag: %v\n", err)
	}
	if err := viper.BindPFlag("data.bucket_dir", rootCmd.PersistentFlags().Lookup("bucket-dir")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind bucket-dir flag: %v\n", err)
	}
	if err := viper.BindPFlag("data.reports_dir", rootCmd.PersistentFlags().Lookup("reports-dir")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind reports-dir flag: %v\n", err)
	}
	if err := viper.BindPFlag("tracking.user", rootCmd.Flags().Lookup("user")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind user flag: %v\n", err)
	}
	if err := viper.BindPFlag("tracking.poll_interval", rootCmd.Flags().Lookup("poll-interval")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind poll-interval flag: %v\n", err)
	}
	if err := viper.BindPFlag("tracking.replay_file", rootCmd.Flags().Lookup("replay")); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind replay flag: %v\n", err)
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName("timecat")
	}

	viper.SetEnvPrefix("TIMECAT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// loadConfiguration assembles the layered configuration: defaults, then
// config files, then environment, then flags.
func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	loader := config.NewLoader()

	if cfgFile != "" {
		loader.AddSource(config.NewFileSource(cfgFile))
	} else {
		for _, path := range config.ConfigPaths() {
			loader.AddSource(config.NewFileSource(path))
		}
	}
	loader.AddSource(config.NewEnvSource("TIMECAT"))
	loader.AddSource(config.NewFlagSource(cmd.Flags()))
	loader.AddValidator(config.NewStandardValidator())

	return loader.LoadWithDefaults()
}

package internal

import (
	"time"

	"github.com/penwyp/timecat/config"
	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/rollup"
)

// RunRecovery re-attempts merges for bucket files a previous run left
// behind. Today's daily bucket is left alone; its day is still open.
func RunRecovery(cfg *config.Config) error {
	var ledger *rollup.MergeLedger
	if cfg.Ledger.Enabled {
		opened, err := rollup.OpenLedger(cfg.Ledger.Path)
		if err != nil {
			logging.LogWarnf("merge ledger unavailable: %v", err)
		} else {
			ledger = opened
			defer ledger.Close()
		}
	}

	engine := rollup.NewEngine(cfg.Data.ReportsDir, ledger)
	return engine.Recover(cfg.Data.BucketDir, cfg.Tracking.User, "", time.Now())
}

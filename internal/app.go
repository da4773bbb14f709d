package internal

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/penwyp/timecat/config"
	"github.com/penwyp/timecat/fileio"
	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
	"github.com/penwyp/timecat/rollup"
	"github.com/penwyp/timecat/sessions"
)

// Application wires the tracker together: sample source and idle monitor
// feed the segmenter on a fixed cadence, finalized segments go to the
// bucket store, and boundary crossings trigger the rollup engine inline.
// One logical thread of control; session state has no concurrent mutators.
type Application struct {
	cfg       *config.Config
	logger    *logging.Logger
	segmenter *sessions.Segmenter
	store     *fileio.BucketStore
	engine    *rollup.Engine
	ledger    *rollup.MergeLedger

	source sessions.SampleSource
	idle   sessions.IdleMonitor
	clock  func() time.Time
	replay bool

	cfgWatcher *config.Watcher
}

// Option customizes application construction.
type Option func(*Application)

// WithProbes installs a live sample source and idle monitor.
func WithProbes(source sessions.SampleSource, idle sessions.IdleMonitor) Option {
	return func(a *Application) {
		a.source = source
		a.idle = idle
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Application) {
		a.clock = clock
	}
}

// NewApplication creates the tracker application.
func NewApplication(cfg *config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		logger: logging.NewLogger(cfg.App.LogLevel, cfg.App.LogFile),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap constructs the components in dependency order.
func (a *Application) bootstrap() error {
	cfg := a.cfg

	if cfg.Tracking.ReplayFile != "" {
		replay, err := fileio.NewReplaySource(cfg.Tracking.ReplayFile)
		if err != nil {
			return err
		}
		a.source = replay
		a.idle = replay
		a.clock = replay.Now
		a.replay = true
		a.logger.Infof("replaying %d samples from %s", replay.Len(), cfg.Tracking.ReplayFile)
	}
	if a.source == nil || a.idle == nil {
		return fmt.Errorf("no sample source configured; supply probes or a replay file")
	}

	if cfg.Ledger.Enabled {
		ledger, err := rollup.OpenLedger(cfg.Ledger.Path)
		if err != nil {
			// The ledger is an audit trail, not a correctness dependency.
			a.logger.Warnf("merge ledger unavailable: %v", err)
		} else {
			a.ledger = ledger
		}
	}

	a.segmenter = sessions.NewSegmenter(cfg.Tracking.User, cfg.Tracking.IdleThreshold)
	a.engine = rollup.NewEngine(cfg.Data.ReportsDir, a.ledger)

	store, err := fileio.OpenBucketStore(cfg.Data.BucketDir, cfg.Tracking.User, a.clock())
	if err != nil {
		return err
	}
	a.store = store

	// Buckets from a crashed run are merged before new data accumulates.
	if err := a.engine.Recover(cfg.Data.BucketDir, cfg.Tracking.User, store.CurrentPath(), a.clock()); err != nil {
		return fmt.Errorf("startup recovery: %w", err)
	}

	return nil
}

// WatchConfig enables hot reload of tunables from the given config file.
func (a *Application) WatchConfig(path string) error {
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		a.segmenter.SetIdleThreshold(cfg.Tracking.IdleThreshold)
		if cfg.Tracking.PollInterval != a.cfg.Tracking.PollInterval {
			a.logger.Infof("poll interval change to %s takes effect on restart", cfg.Tracking.PollInterval)
		}
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	a.cfgWatcher = watcher
	return nil
}

// Run polls until a shutdown signal arrives (or, in replay mode, the log is
// exhausted), then flushes the in-flight segment and closes down.
func (a *Application) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	a.logger.Infof("tracking user %s into %s", a.cfg.Tracking.User, a.cfg.Data.BucketDir)

	if a.replay {
		for {
			select {
			case sig := <-sigCh:
				a.logger.Infof("received %s, shutting down", sig)
				return a.shutdown()
			default:
			}
			done, err := a.tick()
			if err != nil {
				a.logger.Errorf("tick: %v", err)
			}
			if done {
				return a.shutdown()
			}
		}
	}

	ticker := time.NewTicker(a.cfg.Tracking.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case sig := <-sigCh:
			a.logger.Infof("received %s, shutting down", sig)
			return a.shutdown()
		case <-ticker.C:
			if _, err := a.tick(); err != nil {
				a.logger.Errorf("tick: %v", err)
			}
		}
	}
}

// tick performs one poll: sample, gate on idle, append any finalized
// segment, and run rollups for any boundary crossing.
func (a *Application) tick() (done bool, err error) {
	sample, ok, sampleErr := a.source.Sample()
	if errors.Is(sampleErr, fileio.ErrReplayExhausted) {
		return true, nil
	}

	idle, idleErr := a.idle.IdleSeconds()
	if idleErr != nil {
		// Idle unknown for this tick; treat as active rather than pausing.
		idle = 0
	}

	now := a.clock()

	var sp *models.ActivitySample
	switch {
	case sampleErr != nil:
		// Probe failure: no sample this tick, session state untouched.
		a.logger.Debugf("sample source failure: %v", sampleErr)
	case !ok:
		catchAll := models.UnknownSample(a.cfg.Tracking.User, now)
		sp = &catchAll
	default:
		if sample.Timestamp.IsZero() {
			sample.Timestamp = now
		}
		if sample.User == "" {
			sample.User = a.cfg.Tracking.User
		}
		sp = &sample
	}

	if seg := a.segmenter.Tick(sp, idle, now); seg != nil {
		if err := a.store.Append(seg); err != nil {
			return false, err
		}
	}

	ev, err := a.store.Rollover(now)
	if err != nil {
		return false, err
	}
	if ev != nil {
		if err := a.engine.MergeHourly(ev.ClosedHourly, ev.DailyTarget); err != nil {
			return false, err
		}
		if ev.ClosedDaily != "" {
			if err := a.engine.MergeDaily(ev.ClosedDaily); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

// shutdown synchronously flushes the in-flight segment before exit; no
// segment is silently dropped.
func (a *Application) shutdown() error {
	now := a.clock()
	if seg := a.segmenter.Flush(now); seg != nil {
		if err := a.store.Append(seg); err != nil {
			a.logger.Errorf("failed to flush in-flight segment: %v", err)
		}
	}

	if a.cfgWatcher != nil {
		if err := a.cfgWatcher.Stop(); err != nil {
			a.logger.Warnf("config watcher stop: %v", err)
		}
	}
	if err := a.ledger.Close(); err != nil {
		a.logger.Warnf("ledger close: %v", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

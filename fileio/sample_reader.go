package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/timecat/logging"
	"github.com/penwyp/timecat/models"
)

// ErrReplayExhausted signals that a replay log has no more samples.
var ErrReplayExhausted = errors.New("replay log exhausted")

// replayRecord is one line of a JSONL replay log.
type replayRecord struct {
	User        string    `json:"user"`
	App         string    `json:"app"`
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`
	Timestamp   time.Time `json:"timestamp"`
	IdleSeconds float64   `json:"idle_seconds"`
	Unknown     bool      `json:"unknown"`
}

// ReplaySource drives the tracker loop from a JSONL sample log instead of a
// live platform probe. Each Sample call consumes one record; IdleSeconds
// and Now report the consumed record's idle reading and timestamp so replay
// runs on the recorded clock.
type ReplaySource struct {
	records []replayRecord
	cursor  int
	last    *replayRecord
}

// NewReplaySource loads a JSONL replay log. Malformed lines are logged and
// skipped, never fatal.
func NewReplaySource(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay log %s: %w", path, err)
	}
	defer f.Close()

	var records []replayRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec replayRecord
		if err := sonic.Unmarshal([]byte(line), &rec); err != nil {
			logging.LogWarnf("replay %s line %d: skipping malformed record: %v", path, lineNo, err)
			continue
		}
		if rec.Timestamp.IsZero() {
			logging.LogWarnf("replay %s line %d: skipping record without timestamp", path, lineNo)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay log %s: %w", path, err)
	}

	return &ReplaySource{records: records}, nil
}

// Len returns the number of loaded replay records.
func (r *ReplaySource) Len() int {
	return len(r.records)
}

// Sample consumes the next replay record. It returns ok=false for records
// marked unknown, mirroring a probe that cannot resolve the foreground
// identity. ErrReplayExhausted ends the run.
func (r *ReplaySource) Sample() (models.ActivitySample, bool, error) {
	if r.cursor >= len(r.records) {
		return models.ActivitySample{}, false, ErrReplayExhausted
	}
	rec := r.records[r.cursor]
	r.cursor++
	r.last = &rec

	if rec.Unknown {
		return models.ActivitySample{}, false, nil
	}
	return models.ActivitySample{
		User:      rec.User,
		App:       rec.App,
		FilePath:  rec.FilePath,
		FileName:  rec.FileName,
		Timestamp: rec.Timestamp,
	}, true, nil
}

// IdleSeconds reports the idle reading of the most recently consumed record.
func (r *ReplaySource) IdleSeconds() (float64, error) {
	if r.last == nil {
		return 0, nil
	}
	return r.last.IdleSeconds, nil
}

// Now reports the recorded clock: the timestamp of the most recently
// consumed record.
func (r *ReplaySource) Now() time.Time {
	if r.last == nil {
		if len(r.records) > 0 {
			return r.records[0].Timestamp
		}
		return time.Now()
	}
	return r.last.Timestamp
}

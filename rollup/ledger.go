package rollup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dgraph-io/badger/v3"
)

// Merge kinds recorded in the ledger.
const (
	MergeKindHourly = "hourly"
	MergeKindDaily  = "daily"
)

// LedgerEntry is the audit record of one committed merge.
type LedgerEntry struct {
	Kind     string    `json:"kind"`
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	MergedAt time.Time `json:"merged_at"`
}

// MergeLedger is a badger-backed audit trail of committed merges. Deletion
// of the source bucket remains the at-most-once guard; the ledger lets a
// recovery run tell an already-merged bucket from a never-seen one.
type MergeLedger struct {
	db *badger.DB
}

// OpenLedger opens (creating if needed) the ledger database at path.
func OpenLedger(path string) (*MergeLedger, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logging is too chatty for a tracker
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger at %s: %w", path, err)
	}
	return &MergeLedger{db: db}, nil
}

// Record writes the audit entry for a committed merge.
func (l *MergeLedger) Record(kind, source string, rows int) error {
	if l == nil {
		return nil
	}

	entry := LedgerEntry{
		Kind:     kind,
		Source:   filepath.Base(source),
		Rows:     rows,
		MergedAt: time.Now(),
	}
	data, err := sonic.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode ledger entry: %w", err)
	}

	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ledgerKey(kind, source), data)
	})
}

// Seen reports whether a merge for this source was already committed.
func (l *MergeLedger) Seen(kind, source string) (bool, error) {
	if l == nil {
		return false, nil
	}

	var seen bool
	err := l.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(ledgerKey(kind, source))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		seen = true
		return nil
	})
	return seen, err
}

// Entries returns all audit entries, newest-first ordering not guaranteed.
func (l *MergeLedger) Entries() ([]LedgerEntry, error) {
	if l == nil {
		return nil, nil
	}

	var entries []LedgerEntry
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var entry LedgerEntry
				if err := sonic.Unmarshal(val, &entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// Close closes the underlying database.
func (l *MergeLedger) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}

func ledgerKey(kind, source string) []byte {
	return []byte(kind + "|" + filepath.Base(source))
}

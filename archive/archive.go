// Copyright 2026 Arroyo Network
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package archive persists log entries evicted from the in-memory event
// log. The store is a height-keyed badger database written from the
// log's prune hook. Archival is best effort: a failed write is logged
// and counted, never surfaced to the writer path.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/arroyonet/arroyo/event"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrEntryNotFound = errors.New("archived entry not found")

var keyPrefix = []byte("entry")

// StoreConfig holds the archive store tunables. An empty DataDir opens
// an in-memory badger instance, useful for tests.
type StoreConfig struct {
	PromRegistry prometheus.Registerer
	Logger       *slog.Logger
	DataDir      string
}

// Store is a height-keyed archive of pruned log entries. It implements
// eventlog.PruneHook.
type Store struct {
	db      *badger.DB
	logger  *slog.Logger
	metrics struct {
		entriesArchived prometheus.Counter
		archiveErrors   prometheus.Counter
	}
}

// NewStore opens the archive database
func NewStore(cfg StoreConfig) (*Store, error) {
	s := &Store{}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		s.logger = cfg.Logger.With("component", "archive")
	}
	var badgerOpts badger.Options
	if cfg.DataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
	} else {
		if _, err := os.Stat(cfg.DataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(cfg.DataDir)
	}
	badgerOpts = badgerOpts.
		WithLogger(newBadgerLogger(s.logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	s.db = db
	promautoFactory := promauto.With(cfg.PromRegistry)
	s.metrics.entriesArchived = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_archive_entries_archived_total",
			Help: "total pruned log entries written to the archive",
		},
	)
	s.metrics.archiveErrors = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_archive_errors_total",
			Help: "total archive write failures",
		},
	)
	return s, nil
}

// OnEvict archives entries evicted from the event log. Implements the
// event log's prune hook; must never fail the caller.
func (s *Store) OnEvict(entries []event.LogEntry) {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, entry := range entries {
			val, err := cbor.Marshal(entry)
			if err != nil {
				return fmt.Errorf(
					"failed to encode entry at height %d: %w",
					entry.Height,
					err,
				)
			}
			if err := txn.Set(entryKey(entry.Height), val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.archiveErrors.Inc()
		s.logger.Warn(
			fmt.Sprintf("failed to archive pruned entries: %s", err),
		)
		return
	}
	s.metrics.entriesArchived.Add(float64(len(entries)))
}

// Entry returns the archived entry for the given block height
func (s *Store) Entry(height uint64) (event.LogEntry, error) {
	var entry event.LogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(entryKey(height))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &entry)
		})
	})
	return entry, err
}

// Range returns the archived entries with heights in [fromHeight,
// toHeight], in ascending height order
func (s *Store) Range(
	fromHeight uint64,
	toHeight uint64,
) ([]event.LogEntry, error) {
	var entries []event.LogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = keyPrefix
		iter := txn.NewIterator(iterOpts)
		defer iter.Close()
		for iter.Seek(entryKey(fromHeight)); iter.Valid(); iter.Next() {
			item := iter.Item()
			if heightFromKey(item.Key()) > toHeight {
				break
			}
			var entry event.LogEntry
			err := item.Value(func(val []byte) error {
				return cbor.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func entryKey(height uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], height)
	return key
}

func heightFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(keyPrefix):])
}

// badgerLogger adapts slog to badger's logger interface
type badgerLogger struct {
	logger *slog.Logger
}

func newBadgerLogger(logger *slog.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (b *badgerLogger) Errorf(format string, args ...any) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Warningf(format string, args ...any) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Infof(format string, args ...any) {
	b.logger.Info(fmt.Sprintf(format, args...))
}

func (b *badgerLogger) Debugf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

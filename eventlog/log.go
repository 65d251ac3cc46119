// Copyright 2025 Arroyo Network
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

// Package eventlog stores the event batches emitted while finalizing
// blocks, indexed by block height, and serves them to concurrent readers
// through filtered iterators.
//
// The log is a newest-first immutable linked list behind a small mutable
// header. Readers copy the header into a snapshot under a read lock and
// then traverse lock-free; the garbage collector keeps snapshot-reachable
// nodes alive after the live chain has been pruned past them. There is
// exactly one writer, the Logger, fed by any number of LogEntrySenders
// through an unbounded queue.
package eventlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// DefaultMaxEvents is the soft limit on the total number of events
	// retained across all log entries
	DefaultMaxEvents = 50000
	// DefaultMaxHeightSpan is the soft limit on the block height
	// difference between the newest and oldest retained entries
	DefaultMaxHeightSpan = 1000
)

// PruneHook receives entries evicted from the live log, oldest first.
// Implementations must not block the writer for long; archival work
// should be handed off internally.
type PruneHook interface {
	OnEvict(entries []event.LogEntry)
}

// LogConfig holds the event log tunables and ambient dependencies
type LogConfig struct {
	PromRegistry  prometheus.Registerer
	Logger        *slog.Logger
	PruneHook     PruneHook
	MaxEvents     int
	MaxHeightSpan uint64
}

// logNode pairs one log entry with a link to the next older node. Nodes
// are immutable once created and may be shared between the live chain
// and any number of snapshots.
type logNode struct {
	entry event.LogEntry
	next  *logNode
}

// logSnapshot is a point-in-time copy of the log header. The head
// reference keeps every reachable node alive regardless of later pruning
// on the live log.
type logSnapshot struct {
	oldestHeight uint64
	numEvents    int
	head         *logNode
}

// EventLog is the reader-facing handle to the log. It is safe to share
// a single *EventLog between any number of goroutines; all entries must
// flow through the single associated Logger.
type EventLog struct {
	config  LogConfig
	logger  *slog.Logger
	metrics struct {
		entriesLogged  prometheus.Counter
		eventsLogged   prometheus.Counter
		entriesPruned  prometheus.Counter
		eventsPruned   prometheus.Counter
		eventsRetained prometheus.Gauge
	}
	pruneHook PruneHook

	// Header fields, protected by mutex. The node chain hanging off of
	// head needs no lock to traverse once referenced.
	mutex        sync.RWMutex
	numEvents    int
	oldestHeight uint64
	head         *logNode

	waitingChan      chan struct{}
	waitingChanMutex sync.Mutex
}

// New creates an event log and its associated machinery: the reader
// handle, the single consuming Logger, and the producer-side sender.
// The Logger must be driven by exactly one long-running goroutine; the
// sender may be copied freely across producers.
func New(cfg LogConfig) (*EventLog, *Logger, *LogEntrySender) {
	if cfg.MaxEvents <= 0 {
		cfg.MaxEvents = DefaultMaxEvents
	}
	if cfg.MaxHeightSpan == 0 {
		cfg.MaxHeightSpan = DefaultMaxHeightSpan
	}
	l := &EventLog{
		config:    cfg,
		pruneHook: cfg.PruneHook,
	}
	if cfg.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		l.logger = cfg.Logger.With("component", "eventlog")
	}
	promautoFactory := promauto.With(cfg.PromRegistry)
	l.metrics.entriesLogged = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_eventlog_entries_logged_total",
			Help: "total log entries written to the event log",
		},
	)
	l.metrics.eventsLogged = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_eventlog_events_logged_total",
			Help: "total events written to the event log",
		},
	)
	l.metrics.entriesPruned = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_eventlog_entries_pruned_total",
			Help: "total log entries evicted from the event log",
		},
	)
	l.metrics.eventsPruned = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "arroyo_eventlog_events_pruned_total",
			Help: "total events evicted from the event log",
		},
	)
	l.metrics.eventsRetained = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "arroyo_eventlog_events_retained",
			Help: "events currently retained in the event log",
		},
	)
	queue := newEntryQueue()
	logger := &Logger{
		log:   l,
		queue: queue,
	}
	sender := &LogEntrySender{
		queue: queue,
	}
	return l, logger, sender
}

// TryIter returns an iterator over the events currently in the log that
// match the given query. It never blocks: if the log has no entries it
// fails with ErrEmptyLog, and if the query does not parse it fails with
// ErrInvalidQuery.
func (l *EventLog) TryIter(queryStr string) (*Iterator, error) {
	matcher, err := query.Parse(queryStr)
	if err != nil {
		return nil, ErrInvalidQuery
	}
	return l.TryIterWithMatcher(matcher)
}

// TryIterWithMatcher is TryIter with a precompiled matcher, for reuse
// across retry loops and concurrent readers
func (l *EventLog) TryIterWithMatcher(
	matcher query.Matcher,
) (*Iterator, error) {
	snapshot := l.snapshot()
	if snapshot == nil {
		return nil, ErrEmptyLog
	}
	return &Iterator{
		matcher: matcher,
		node:    snapshot.head,
	}, nil
}

// WaitIter blocks until the log receives new events matching nothing in
// particular (any write wakes all waiters) and then returns an iterator
// for the query, retrying while the log is still empty. When the context
// is done it makes one final unconditional attempt, so a caller never
// sees a bare timeout if data arrived moments before the deadline.
func (l *EventLog) WaitIter(
	ctx context.Context,
	queryStr string,
) (*Iterator, error) {
	matcher, err := query.Parse(queryStr)
	if err != nil {
		return nil, ErrInvalidQuery
	}
	for {
		waitChan := l.waitChan()
		select {
		case <-ctx.Done():
			// Best effort: return whatever the log holds right now
			return l.TryIterWithMatcher(matcher)
		case <-waitChan:
			iter, err := l.TryIterWithMatcher(matcher)
			if errors.Is(err, ErrEmptyLog) {
				// Wake-up raced with pruning or arrived before the
				// first entry; go back to waiting
				continue
			}
			return iter, err
		}
	}
}

// OldestHeight returns the height of the oldest retained entry and
// whether the log holds any entries at all
func (l *EventLog) OldestHeight() (uint64, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.oldestHeight, l.head != nil
}

// NumEvents returns the number of events currently retained
func (l *EventLog) NumEvents() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return l.numEvents
}

// add prepends an entry to the log. Called only from the Logger, which
// serializes all writes. Entries with no events are dropped.
func (l *EventLog) add(entry event.LogEntry) {
	if len(entry.Events) == 0 {
		return
	}
	l.mutex.Lock()
	if l.head == nil {
		l.oldestHeight = entry.Height
	}
	l.numEvents += len(entry.Events)
	l.head = &logNode{
		entry: entry,
		next:  l.head,
	}
	head := l.head
	numEvents := l.numEvents
	oldestHeight := l.oldestHeight
	l.mutex.Unlock()
	l.metrics.entriesLogged.Inc()
	l.metrics.eventsLogged.Add(float64(len(entry.Events)))
	l.metrics.eventsRetained.Set(float64(numEvents))
	// Notify waiting readers
	l.notifyWaiters()
	// Evaluate the soft limits against the state we just captured. No
	// lock is held here, so readers and the next write are not
	// serialized against pruning.
	l.prune(head, numEvents, oldestHeight)
}

// snapshot copies the log header under the read lock, or returns nil if
// the log has never received a non-empty entry
func (l *EventLog) snapshot() *logSnapshot {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	if l.head == nil {
		return nil
	}
	return &logSnapshot{
		oldestHeight: l.oldestHeight,
		numEvents:    l.numEvents,
		head:         l.head,
	}
}

// notifyWaiters wakes every reader currently blocked in WaitIter
func (l *EventLog) notifyWaiters() {
	l.waitingChanMutex.Lock()
	if l.waitingChan != nil {
		close(l.waitingChan)
		l.waitingChan = nil
	}
	l.waitingChanMutex.Unlock()
}

// waitChan returns the channel closed on the next write. Callers must
// obtain the channel before deciding to block so that a write between
// the two points is not missed.
func (l *EventLog) waitChan() <-chan struct{} {
	l.waitingChanMutex.Lock()
	defer l.waitingChanMutex.Unlock()
	if l.waitingChan == nil {
		l.waitingChan = make(chan struct{})
	}
	return l.waitingChan
}

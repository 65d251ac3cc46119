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

package eventlog

import (
	"context"
	"sync"

	"github.com/arroyonet/arroyo/event"
)

// entryQueue is the unbounded multi-producer single-consumer queue
// between LogEntrySenders and the Logger. Sends never block. Closing is
// permanent; entries enqueued before the close are still delivered.
type entryQueue struct {
	mutex      sync.Mutex
	entries    []event.LogEntry
	notifyChan chan struct{}
	closed     bool
}

func newEntryQueue() *entryQueue {
	return &entryQueue{
		notifyChan: make(chan struct{}, 1),
	}
}

func (q *entryQueue) push(entry event.LogEntry) error {
	q.mutex.Lock()
	if q.closed {
		q.mutex.Unlock()
		return ErrLogClosed
	}
	q.entries = append(q.entries, entry)
	q.mutex.Unlock()
	q.notify()
	return nil
}

// notify nudges the consumer without blocking. The consumer re-checks
// the queue after every wake-up, so collapsing multiple notifications
// into one is fine.
func (q *entryQueue) notify() {
	select {
	case q.notifyChan <- struct{}{}:
	default:
	}
}

// next blocks until an entry is available, the queue is closed and
// drained (ErrLogClosed), or the context is done. Must only be called
// from the single consumer goroutine.
func (q *entryQueue) next(ctx context.Context) (event.LogEntry, error) {
	for {
		q.mutex.Lock()
		if len(q.entries) > 0 {
			entry := q.entries[0]
			q.entries = q.entries[1:]
			q.mutex.Unlock()
			return entry, nil
		}
		closed := q.closed
		q.mutex.Unlock()
		if closed {
			return event.LogEntry{}, ErrLogClosed
		}
		select {
		case <-q.notifyChan:
		case <-ctx.Done():
			return event.LogEntry{}, ctx.Err()
		}
	}
}

// close marks the queue permanently closed. Idempotent.
func (q *entryQueue) close() {
	q.mutex.Lock()
	q.closed = true
	q.mutex.Unlock()
	q.notify()
}

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
	"errors"

	"github.com/arroyonet/arroyo/event"
)

// Logger drains the entry queue into the event log. It is the only
// writer: all serialization of log writes comes from driving a single
// Logger from a single goroutine.
type Logger struct {
	log   *EventLog
	queue *entryQueue
}

// LogNewEntry receives the next entry from the queue and writes it to
// the event log. It blocks until an entry is available; it returns
// ErrLogClosed once the senders have closed the queue and it is fully
// drained, or the context error if the context is done first.
func (l *Logger) LogNewEntry(ctx context.Context) error {
	entry, err := l.queue.next(ctx)
	if err != nil {
		return err
	}
	l.log.add(entry)
	return nil
}

// Run calls LogNewEntry until end-of-stream. A clean close of the
// sender side returns nil.
func (l *Logger) Run(ctx context.Context) error {
	for {
		if err := l.LogNewEntry(ctx); err != nil {
			if errors.Is(err, ErrLogClosed) {
				return nil
			}
			return err
		}
	}
}

// Close permanently shuts down the entry queue from the consumer side.
// Senders observe ErrLogClosed from then on.
func (l *Logger) Close() {
	l.queue.close()
}

// LogEntrySender is the producer-side handle used by block finalization
// to hand event batches to the Logger. Copies share the same queue and
// may be used from any number of goroutines.
type LogEntrySender struct {
	queue *entryQueue
}

// SendNewEntry enqueues an entry for the Logger without blocking. It
// returns ErrLogClosed if the logger side has shut down permanently;
// callers must treat that as "log is gone", not retry.
func (s *LogEntrySender) SendNewEntry(entry event.LogEntry) error {
	return s.queue.push(entry)
}

// Close signals end-of-stream to the Logger. Entries already enqueued
// are still delivered before the Logger observes the close.
func (s *LogEntrySender) Close() {
	s.queue.close()
}

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

import "github.com/arroyonet/arroyo/event"

// heightSpan is the distance between the newest entry and an older one.
// Entries are expected to arrive with non-decreasing heights, but a
// producer that delivers them out of order must not wrap the unsigned
// subtraction and evict live entries; a "newer than newest" entry counts
// as span zero.
func heightSpan(newestHeight uint64, height uint64) uint64 {
	if height > newestHeight {
		return 0
	}
	return newestHeight - height
}

// prune evicts the oldest entries once either soft limit is exceeded:
// more than MaxEvents events retained in total, or a block height span
// between the newest and oldest retained entries wider than
// MaxHeightSpan. It operates on the head and counters captured by add,
// outside the write lock.
//
// Eviction never mutates existing nodes. The surviving prefix is copied
// into fresh nodes and installed as the new live chain, so any snapshot
// taken before the prune keeps seeing the full chain it captured.
func (l *EventLog) prune(head *logNode, numEvents int, oldestHeight uint64) {
	if head == nil {
		return
	}
	newestHeight := head.entry.Height
	if numEvents <= l.config.MaxEvents &&
		heightSpan(newestHeight, oldestHeight) <= l.config.MaxHeightSpan {
		return
	}
	// Walk the captured chain newest-first, keeping the longest prefix
	// that satisfies both limits
	var kept []*logNode
	keptEvents := 0
	node := head
	for node != nil {
		if keptEvents+len(node.entry.Events) > l.config.MaxEvents {
			break
		}
		if heightSpan(newestHeight, node.entry.Height) > l.config.MaxHeightSpan {
			break
		}
		keptEvents += len(node.entry.Events)
		kept = append(kept, node)
		node = node.next
	}
	evicted := node
	if len(kept) == 0 {
		// The newest entry alone exceeds MaxEvents. These are soft
		// limits: the newest entry always survives.
		kept = append(kept, head)
		keptEvents = len(head.entry.Events)
		evicted = head.next
	}
	if evicted == nil {
		return
	}
	// Rebuild the surviving prefix with a fresh tail link
	var newHead *logNode
	for i := len(kept) - 1; i >= 0; i-- {
		newHead = &logNode{
			entry: kept[i].entry,
			next:  newHead,
		}
	}
	newOldestHeight := kept[len(kept)-1].entry.Height
	// Only the Logger goroutine prunes, so nothing can have prepended
	// to the chain since add captured this head
	l.mutex.Lock()
	l.head = newHead
	l.numEvents = keptEvents
	l.oldestHeight = newOldestHeight
	l.mutex.Unlock()
	// Collect the evicted suffix oldest-first for the hook
	var evictedEntries []event.LogEntry
	evictedEvents := 0
	for node := evicted; node != nil; node = node.next {
		evictedEntries = append(evictedEntries, node.entry)
		evictedEvents += len(node.entry.Events)
	}
	for i, j := 0, len(evictedEntries)-1; i < j; i, j = i+1, j-1 {
		evictedEntries[i], evictedEntries[j] = evictedEntries[j], evictedEntries[i]
	}
	l.metrics.entriesPruned.Add(float64(len(evictedEntries)))
	l.metrics.eventsPruned.Add(float64(evictedEvents))
	l.metrics.eventsRetained.Set(float64(keptEvents))
	l.logger.Debug(
		"pruned event log",
		"evicted_entries", len(evictedEntries),
		"evicted_events", evictedEvents,
		"oldest_height", newOldestHeight,
	)
	if l.pruneHook != nil {
		l.pruneHook.OnEvict(evictedEntries)
	}
}

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
	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog/query"
)

// Iterator is a lazy, finite traversal over the events captured by one
// log snapshot, newest entry first, yielding only events that match the
// query. It holds its own snapshot reference, so writes and pruning on
// the live log cannot affect it once constructed. Not safe for
// concurrent use and not restartable.
type Iterator struct {
	matcher query.Matcher
	node    *logNode
	index   int
}

// Next returns the next matching event, or false when the snapshot is
// exhausted
func (i *Iterator) Next() (event.Event, bool) {
	for i.node != nil {
		events := i.node.entry.Events
		if i.index < len(events) {
			evt := events[i.index]
			i.index++
			if i.matcher.Matches(evt) {
				return evt, true
			}
			continue
		}
		i.node = i.node.next
		i.index = 0
	}
	return event.Event{}, false
}

// Collect drains the iterator into a slice
func (i *Iterator) Collect() []event.Event {
	var events []event.Event
	for {
		evt, ok := i.Next()
		if !ok {
			return events
		}
		events = append(events, evt)
	}
}

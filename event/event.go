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

package event

import "maps"

// EventType is the semantic category of an event emitted during block
// finalization
type EventType string

const (
	EventTypeAccepted EventType = "accepted"
	EventTypeApplied  EventType = "applied"
	EventTypeProposal EventType = "proposal"
	EventTypeIbc      EventType = "ibc"
)

// EventLevel is the visibility level of an event
type EventLevel string

const (
	// EventLevelBlock is for events relevant to the entire block
	EventLevelBlock EventLevel = "block"
	// EventLevelTx is for events relevant to a single transaction
	EventLevelTx EventLevel = "tx"
)

// Event is one semantic fact emitted while finalizing a block. Events are
// immutable values; producers build them once and hand them to the event
// log, which never modifies them.
type Event struct {
	Type       EventType
	Level      EventLevel
	Attributes map[string]string
}

func NewEvent(
	eventType EventType,
	level EventLevel,
	attributes map[string]string,
) Event {
	if attributes == nil {
		attributes = map[string]string{}
	}
	return Event{
		Type:       eventType,
		Level:      level,
		Attributes: attributes,
	}
}

// NewAccepted returns the event emitted when a transaction is accepted
// into a block
func NewAccepted(txHash string) Event {
	return NewEvent(
		EventTypeAccepted,
		EventLevelBlock,
		map[string]string{"hash": txHash},
	)
}

// NewApplied returns the event emitted when an accepted transaction is
// applied to the ledger state
func NewApplied(txHash string) Event {
	return NewEvent(
		EventTypeApplied,
		EventLevelBlock,
		map[string]string{"hash": txHash},
	)
}

// Attribute returns the value of the named attribute and whether it was
// present
func (e Event) Attribute(key string) (string, bool) {
	val, ok := e.Attributes[key]
	return val, ok
}

// Equal compares events by value
func (e Event) Equal(other Event) bool {
	return e.Type == other.Type &&
		e.Level == other.Level &&
		maps.Equal(e.Attributes, other.Attributes)
}

// Clone returns a deep copy of the event. Useful when a producer wants to
// reuse an attribute map after handing the event off.
func (e Event) Clone() Event {
	return Event{
		Type:       e.Type,
		Level:      e.Level,
		Attributes: maps.Clone(e.Attributes),
	}
}

// LogEntry is everything the event log learns about one finalized block:
// the block height and the batch of events emitted while finalizing it
type LogEntry struct {
	Height uint64
	Events []Event
}

// NumEvents returns the size of the entry's event batch
func (le LogEntry) NumEvents() int {
	return len(le.Events)
}

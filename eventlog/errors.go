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

import "errors"

var (
	// ErrInvalidQuery is returned when a query string cannot be parsed.
	// Terminal for that call: retrying without fixing the query will
	// fail again.
	ErrInvalidQuery = errors.New("invalid event query")

	// ErrEmptyLog is returned when the log has no retained entries.
	// Transient: the log may receive entries at any moment.
	ErrEmptyLog = errors.New("event log is empty")

	// ErrTimeout is reserved for blocking read variants that surface
	// deadline expiry instead of falling back to a best-effort read.
	// WaitIter does not return it.
	ErrTimeout = errors.New("timed out waiting for log entries")

	// ErrLogClosed is returned by senders once the logger side has shut
	// down permanently, and by the logger once the senders have signaled
	// end-of-stream and the queue is drained
	ErrLogClosed = errors.New("event log entry queue is closed")
)

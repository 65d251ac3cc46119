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

package query_test

import (
	"testing"

	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog/query"
)

func TestParseAcceptedQuery(t *testing.T) {
	matcher, err := query.Parse(
		"tm.event='NewBlock' AND accepted.hash='DEADBEEF'",
	)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	if matcher.EventType() != event.EventTypeAccepted {
		t.Fatalf("unexpected event type: %s", matcher.EventType())
	}
	if !matcher.Matches(event.NewAccepted("DEADBEEF")) {
		t.Fatalf("matcher did not match expected event")
	}
	if matcher.Matches(event.NewApplied("DEADBEEF")) {
		t.Fatalf("matcher matched event of wrong type")
	}
	if matcher.Matches(event.NewAccepted("BEEF")) {
		t.Fatalf("matcher matched event with wrong hash")
	}
}

func TestParseMultiTermQuery(t *testing.T) {
	matcher, err := query.Parse(
		"tm.event='NewBlock' AND applied.hash='CAFE' AND applied.code='0'",
	)
	if err != nil {
		t.Fatalf("unexpected parse error: %s", err)
	}
	evt := event.NewEvent(
		event.EventTypeApplied,
		event.EventLevelBlock,
		map[string]string{"hash": "CAFE", "code": "0"},
	)
	if !matcher.Matches(evt) {
		t.Fatalf("matcher did not match event satisfying all terms")
	}
	// Drop one attribute and the match must fail
	partial := event.NewEvent(
		event.EventTypeApplied,
		event.EventLevelBlock,
		map[string]string{"hash": "CAFE"},
	)
	if matcher.Matches(partial) {
		t.Fatalf("matcher matched event missing a term")
	}
}

func TestParseInvalidQueries(t *testing.T) {
	testDefs := []string{
		"",
		"tm.event='NewBlock'",
		"accepted.hash='DEADBEEF'",
		"tm.event='NewTx' AND accepted.hash='DEADBEEF'",
		"tm.event='NewBlock' AND bogus",
		"tm.event='NewBlock' AND unknown.hash='DEADBEEF'",
		"tm.event='NewBlock' AND accepted.hash='A' AND applied.hash='A'",
	}
	for _, testDef := range testDefs {
		if _, err := query.Parse(testDef); err == nil {
			t.Fatalf("expected parse error for query: %q", testDef)
		}
	}
}

func TestPrecompiledMatchers(t *testing.T) {
	if !query.Accepted("DEADBEEF").Matches(event.NewAccepted("DEADBEEF")) {
		t.Fatalf("Accepted matcher did not match")
	}
	if !query.Applied("DEADBEEF").Matches(event.NewApplied("DEADBEEF")) {
		t.Fatalf("Applied matcher did not match")
	}
	if query.Accepted("DEADBEEF").Matches(event.NewApplied("DEADBEEF")) {
		t.Fatalf("Accepted matcher matched applied event")
	}
}

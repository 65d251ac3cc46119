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

// Package query implements a deliberately small subset of Tendermint-style
// event queries: the conjunction of an implicit event-type term and one or
// more attribute equality terms, e.g.
//
//	tm.event='NewBlock' AND accepted.hash='DEADBEEF'
//
// Anything outside that shape is a parse error. Matchers are cheap value
// types and can be shared freely between goroutines.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/arroyonet/arroyo/event"
)

const blockEventTerm = "tm.event='NewBlock'"

var ErrUnsupportedQuery = errors.New("unsupported query string")

// attrTermRegexp matches one `<type>.<key>='<value>'` conjunction term
var attrTermRegexp = regexp.MustCompile(
	`^(accepted|applied|proposal|ibc)\.([\w.-]+)='([^']*)'$`,
)

// Matcher is a compiled query, tested against one event at a time
type Matcher struct {
	eventType  event.EventType
	attributes map[string]string
}

// Parse compiles a query string into a Matcher. Terms are split on the
// literal " AND ", so an attribute value containing that sequence cannot
// be expressed in this grammar.
func Parse(queryStr string) (Matcher, error) {
	terms := strings.Split(queryStr, " AND ")
	if len(terms) < 2 {
		return Matcher{}, fmt.Errorf(
			"%w: expected at least two terms: %q",
			ErrUnsupportedQuery,
			queryStr,
		)
	}
	if terms[0] != blockEventTerm {
		return Matcher{}, fmt.Errorf(
			"%w: query must start with %s: %q",
			ErrUnsupportedQuery,
			blockEventTerm,
			queryStr,
		)
	}
	matcher := Matcher{
		attributes: make(map[string]string, len(terms)-1),
	}
	for _, term := range terms[1:] {
		subMatches := attrTermRegexp.FindStringSubmatch(term)
		if subMatches == nil {
			return Matcher{}, fmt.Errorf(
				"%w: bad attribute term: %q",
				ErrUnsupportedQuery,
				term,
			)
		}
		termType := event.EventType(subMatches[1])
		// All attribute terms must name the same event type. A mixed
		// conjunction could never match a single event.
		if matcher.eventType != "" && matcher.eventType != termType {
			return Matcher{}, fmt.Errorf(
				"%w: conflicting event types %s and %s",
				ErrUnsupportedQuery,
				matcher.eventType,
				termType,
			)
		}
		matcher.eventType = termType
		matcher.attributes[subMatches[2]] = subMatches[3]
	}
	return matcher, nil
}

// Accepted returns a precompiled matcher for transaction-accepted events
// with the given hash
func Accepted(txHash string) Matcher {
	return Matcher{
		eventType:  event.EventTypeAccepted,
		attributes: map[string]string{"hash": txHash},
	}
}

// Applied returns a precompiled matcher for transaction-applied events
// with the given hash
func Applied(txHash string) Matcher {
	return Matcher{
		eventType:  event.EventTypeApplied,
		attributes: map[string]string{"hash": txHash},
	}
}

// Matches reports whether the event satisfies every term of the query
func (m Matcher) Matches(evt event.Event) bool {
	if evt.Type != m.eventType {
		return false
	}
	for key, want := range m.attributes {
		got, ok := evt.Attributes[key]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// EventType returns the event type the matcher selects
func (m Matcher) EventType() event.EventType {
	return m.eventType
}

func (m Matcher) String() string {
	var sb strings.Builder
	sb.WriteString(blockEventTerm)
	for key, val := range m.attributes {
		fmt.Fprintf(&sb, " AND %s.%s='%s'", m.eventType, key, val)
	}
	return sb.String()
}

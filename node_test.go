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

package arroyo

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/arroyonet/arroyo/event"
	"github.com/stretchr/testify/require"
)

func mockEntry(height uint64) event.LogEntry {
	return event.LogEntry{
		Height: height,
		Events: []event.Event{
			event.NewAccepted("DEADBEEF"),
		},
	}
}

const testQuery = "tm.event='NewBlock' AND accepted.hash='DEADBEEF'"

const testEntryLines = `{"height":0,"events":[{"type":"accepted","level":"block","attributes":{"hash":"DEADBEEF"}}]}
{"height":1,"events":[{"type":"applied","level":"block","attributes":{"hash":"DEADBEEF"}}]}
not json
{"height":2,"events":[]}
{"height":3,"events":[{"type":"accepted","level":"block","attributes":{"hash":"DEADBEEF"}}]}
`

func TestNodeIngestEndToEnd(t *testing.T) {
	node, err := New(NewConfig(
		WithApiListenAddress("127.0.0.1:0"),
		WithEntrySource(strings.NewReader(testEntryLines)),
	))
	require.NoError(t, err)

	runChan := make(chan error, 1)
	go func() {
		runChan <- node.Run(context.Background())
	}()

	// The entry source is finite, so the writer drains it and Run
	// returns on its own
	select {
	case err := <-runChan:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatalf("node did not stop after draining the entry source")
	}

	// Heights 0 and 3 carry matching accepted events; the malformed
	// line and the empty batch are dropped
	iter, err := node.EventLog().TryIter(testQuery)
	require.NoError(t, err)
	require.Len(t, iter.Collect(), 2)
	require.Equal(t, 3, node.EventLog().NumEvents())
}

func TestNodeStopIdempotent(t *testing.T) {
	node, err := New(NewConfig(
		WithApiListenAddress("127.0.0.1:0"),
	))
	require.NoError(t, err)
	require.NoError(t, node.Stop())
	require.NoError(t, node.Stop())
}

func TestNodeSenderAfterStop(t *testing.T) {
	node, err := New(NewConfig(
		WithApiListenAddress("127.0.0.1:0"),
	))
	require.NoError(t, err)
	require.NoError(t, node.Stop())
	err = node.Sender().SendNewEntry(mockEntry(0))
	require.Error(t, err)
}

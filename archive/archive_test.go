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

package archive_test

import (
	"context"
	"testing"

	"github.com/arroyonet/arroyo/archive"
	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog"
	"github.com/stretchr/testify/require"
)

func testEntry(height uint64) event.LogEntry {
	return event.LogEntry{
		Height: height,
		Events: []event.Event{
			event.NewAccepted("DEADBEEF"),
			event.NewApplied("DEADBEEF"),
		},
	}
}

func testStore(t *testing.T) *archive.Store {
	t.Helper()
	store, err := archive.NewStore(archive.StoreConfig{})
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck
		store.Close()
	})
	return store
}

func TestArchiveRoundTrip(t *testing.T) {
	store := testStore(t)
	original := testEntry(42)
	store.OnEvict([]event.LogEntry{original})

	restored, err := store.Entry(42)
	require.NoError(t, err)
	require.Equal(t, original.Height, restored.Height)
	require.Len(t, restored.Events, len(original.Events))
	for i := range original.Events {
		require.True(t, original.Events[i].Equal(restored.Events[i]))
	}
}

func TestArchiveEntryNotFound(t *testing.T) {
	store := testStore(t)
	_, err := store.Entry(99)
	require.ErrorIs(t, err, archive.ErrEntryNotFound)
}

func TestArchiveRange(t *testing.T) {
	store := testStore(t)
	var entries []event.LogEntry
	for height := uint64(0); height < 10; height++ {
		entries = append(entries, testEntry(height))
	}
	store.OnEvict(entries)

	ranged, err := store.Range(3, 6)
	require.NoError(t, err)
	require.Len(t, ranged, 4)
	for i, entry := range ranged {
		require.Equal(t, uint64(3+i), entry.Height)
	}
}

func TestArchiveReceivesPrunedEntries(t *testing.T) {
	store := testStore(t)
	_, logger, sender := eventlog.New(eventlog.LogConfig{
		MaxEvents: 4,
		PruneHook: store,
	})
	for height := uint64(0); height < 8; height++ {
		require.NoError(t, sender.SendNewEntry(event.LogEntry{
			Height: height,
			Events: []event.Event{
				event.NewApplied("DEADBEEF"),
			},
		}))
	}
	sender.Close()
	require.NoError(t, logger.Run(context.Background()))

	// Heights 0-3 were evicted from the live log and must be archived
	archived, err := store.Range(0, 7)
	require.NoError(t, err)
	require.Len(t, archived, 4)
	for i, entry := range archived {
		require.Equal(t, uint64(i), entry.Height)
	}
}

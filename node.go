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

// Package arroyo wires the event log subsystem into a runnable service:
// the log itself, its single writer, an optional pruned-entry archive,
// an ingest loop standing in for block finalization, and the HTTP API
// that remote clients query for events.
package arroyo

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/arroyonet/arroyo/api"
	"github.com/arroyonet/arroyo/archive"
	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog"
)

type Node struct {
	config       Config
	logger       *slog.Logger
	eventLog     *eventlog.EventLog
	logWriter    *eventlog.Logger
	sender       *eventlog.LogEntrySender
	archiveStore *archive.Store
	apiServer    *api.Api
	shutdownOnce sync.Once
}

func New(cfg Config) (*Node, error) {
	n := &Node{
		config: cfg,
	}
	if cfg.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		n.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		n.logger = cfg.logger
	}
	var pruneHook eventlog.PruneHook
	if cfg.archiveDir != "" {
		store, err := archive.NewStore(archive.StoreConfig{
			DataDir:      cfg.archiveDir,
			Logger:       n.logger,
			PromRegistry: cfg.promRegistry,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open archive: %w", err)
		}
		n.archiveStore = store
		pruneHook = store
	}
	n.eventLog, n.logWriter, n.sender = eventlog.New(eventlog.LogConfig{
		PromRegistry:  cfg.promRegistry,
		Logger:        n.logger,
		PruneHook:     pruneHook,
		MaxEvents:     cfg.maxLogEvents,
		MaxHeightSpan: cfg.maxHeightSpan,
	})
	n.apiServer = api.New(
		api.ApiConfig{
			ListenAddress:  cfg.apiListenAddress,
			MaxWaitTimeout: cfg.maxWaitTimeout,
		},
		n.eventLog,
		n.logger,
	)
	return n, nil
}

// EventLog returns the reader-facing log handle
func (n *Node) EventLog() *eventlog.EventLog {
	return n.eventLog
}

// Sender returns the producer-side handle for feeding entries into the
// log
func (n *Node) Sender() *eventlog.LogEntrySender {
	return n.sender
}

// Archive returns the pruned-entry archive, or nil when archiving is
// disabled
func (n *Node) Archive() *archive.Store {
	return n.archiveStore
}

// Run starts the API listener, the log writer, and the ingest loop, and
// blocks until the context is canceled or the writer stops
func (n *Node) Run(ctx context.Context) error {
	if err := n.apiServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	writerChan := make(chan error, 1)
	go func() {
		writerChan <- n.logWriter.Run(ctx)
	}()
	if n.config.entrySource != nil {
		go n.ingest(n.config.entrySource)
	}
	select {
	case <-ctx.Done():
		return n.Stop()
	case err := <-writerChan:
		if stopErr := n.Stop(); stopErr != nil && err == nil {
			return stopErr
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// Stop shuts the node down: the entry queue is closed, the API server
// drains, and the archive is flushed. Safe to call multiple times.
func (n *Node) Stop() error {
	var retErr error
	n.shutdownOnce.Do(func() {
		n.sender.Close()
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			n.config.shutdownTimeout,
		)
		defer cancel()
		if err := n.apiServer.Stop(shutdownCtx); err != nil {
			retErr = err
		}
		if n.archiveStore != nil {
			if err := n.archiveStore.Close(); err != nil && retErr == nil {
				retErr = err
			}
		}
	})
	return retErr
}

// entryJson is the wire form of one ingested log entry
type entryJson struct {
	Height uint64 `json:"height"`
	Events []struct {
		Type       string            `json:"type"`
		Level      string            `json:"level"`
		Attributes map[string]string `json:"attributes"`
	} `json:"events"`
}

// ingest reads JSON-lines entries from the configured source and feeds
// them to the log writer. Malformed lines are logged and skipped; EOF
// closes the entry queue, letting the writer drain and stop.
func (n *Node) ingest(source io.Reader) {
	scanner := bufio.NewScanner(source)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw entryJson
		if err := json.Unmarshal(line, &raw); err != nil {
			n.logger.Warn(
				"skipping malformed entry",
				"component", "ingest",
				"error", err,
			)
			continue
		}
		entry := event.LogEntry{
			Height: raw.Height,
			Events: make([]event.Event, 0, len(raw.Events)),
		}
		for _, rawEvent := range raw.Events {
			entry.Events = append(entry.Events, event.NewEvent(
				event.EventType(rawEvent.Type),
				event.EventLevel(rawEvent.Level),
				rawEvent.Attributes,
			))
		}
		if err := n.sender.SendNewEntry(entry); err != nil {
			// Writer is gone; nothing more to ingest
			return
		}
	}
	if err := scanner.Err(); err != nil {
		n.logger.Error(
			"entry source read error",
			"component", "ingest",
			"error", err,
		)
	}
	n.sender.Close()
}

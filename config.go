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
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DefaultShutdownTimeout = 30 * time.Second

type Config struct {
	promRegistry     prometheus.Registerer
	logger           *slog.Logger
	entrySource      io.Reader
	archiveDir       string
	apiListenAddress string
	maxWaitTimeout   time.Duration
	shutdownTimeout  time.Duration
	maxLogEvents     int
	maxHeightSpan    uint64
}

// ConfigOptionFunc is a type that represents functions to modify the config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new node config with the specified options applied
// over the defaults
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding
// log output.
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies a prometheus registerer for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithEntrySource specifies a reader of JSON-lines log entries to feed
// into the event log. Each line is one entry with a block height and an
// event batch. If unset, entries can only be produced through the
// Sender handle.
func WithEntrySource(source io.Reader) ConfigOptionFunc {
	return func(c *Config) {
		c.entrySource = source
	}
}

// WithArchiveDir specifies the directory for the pruned-entry archive.
// An empty value disables archiving.
func WithArchiveDir(dir string) ConfigOptionFunc {
	return func(c *Config) {
		c.archiveDir = dir
	}
}

// WithApiListenAddress specifies the listen address for the event query
// API
func WithApiListenAddress(address string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = address
	}
}

// WithMaxWaitTimeout caps the long-poll timeout accepted by the API
func WithMaxWaitTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.maxWaitTimeout = timeout
	}
}

// WithShutdownTimeout specifies how long to wait for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithMaxLogEvents specifies the soft limit on events retained in the
// event log
func WithMaxLogEvents(maxEvents int) ConfigOptionFunc {
	return func(c *Config) {
		c.maxLogEvents = maxEvents
	}
}

// WithMaxHeightSpan specifies the soft limit on the block height span
// covered by the event log
func WithMaxHeightSpan(maxSpan uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.maxHeightSpan = maxSpan
	}
}

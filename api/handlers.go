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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/arroyonet/arroyo/eventlog"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an API error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Message:    message,
	})
}

// handleHealth handles GET /health
func (a *Api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleEvents handles GET /events?query=... with a non-blocking read
// of the event log
func (a *Api) handleEvents(w http.ResponseWriter, r *http.Request) {
	queryStr := r.URL.Query().Get("query")
	iter, err := a.log.TryIter(queryStr)
	if err != nil {
		a.writeIterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventsResponse(iter))
}

// handleEventsWait handles GET /events/wait?query=...&timeout=30s,
// blocking up to the timeout for matching events to arrive
func (a *Api) handleEventsWait(w http.ResponseWriter, r *http.Request) {
	queryStr := r.URL.Query().Get("query")
	timeout := a.config.MaxWaitTimeout
	if timeoutStr := r.URL.Query().Get("timeout"); timeoutStr != "" {
		parsed, err := time.ParseDuration(timeoutStr)
		if err != nil || parsed <= 0 {
			writeError(
				w,
				http.StatusBadRequest,
				"invalid timeout",
			)
			return
		}
		timeout = min(parsed, a.config.MaxWaitTimeout)
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	iter, err := a.log.WaitIter(ctx, queryStr)
	if err != nil {
		a.writeIterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventsResponse(iter))
}

func (a *Api) writeIterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, eventlog.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, "invalid query")
	case errors.Is(err, eventlog.ErrEmptyLog):
		writeError(w, http.StatusNotFound, "no events in log")
	default:
		a.logger.Error(
			"failed to read event log",
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

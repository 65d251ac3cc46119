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

package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/arroyonet/arroyo/api"
	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog"
	"github.com/stretchr/testify/require"
)

const testQuery = "tm.event='NewBlock' AND accepted.hash='DEADBEEF'"

func testServer(
	t *testing.T,
	entries ...event.LogEntry,
) *httptest.Server {
	t.Helper()
	log, logger, sender := eventlog.New(eventlog.LogConfig{})
	for _, entry := range entries {
		require.NoError(t, sender.SendNewEntry(entry))
	}
	sender.Close()
	require.NoError(t, logger.Run(context.Background()))
	server := httptest.NewServer(
		api.New(api.ApiConfig{}, log, nil).Handler(),
	)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, rawUrl string, v any) int {
	t.Helper()
	resp, err := http.Get(rawUrl)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHandleHealth(t *testing.T) {
	server := testServer(t)
	var health api.HealthResponse
	status := getJSON(t, server.URL+"/health", &health)
	require.Equal(t, http.StatusOK, status)
	require.True(t, health.IsHealthy)
}

func TestHandleEvents(t *testing.T) {
	server := testServer(t, event.LogEntry{
		Height: 0,
		Events: []event.Event{
			event.NewAccepted("DEADBEEF"),
			event.NewApplied("DEADBEEF"),
		},
	})
	var events api.EventsResponse
	status := getJSON(
		t,
		server.URL+"/events?query="+url.QueryEscape(testQuery),
		&events,
	)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events.Events, 1)
	require.Equal(t, "accepted", events.Events[0].Type)
	require.Equal(t, "DEADBEEF", events.Events[0].Attributes["hash"])
}

func TestHandleEventsInvalidQuery(t *testing.T) {
	server := testServer(t, event.LogEntry{
		Height: 0,
		Events: []event.Event{event.NewAccepted("DEADBEEF")},
	})
	var errResp api.ErrorResponse
	status := getJSON(t, server.URL+"/events?query=bogus", &errResp)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandleEventsEmptyLog(t *testing.T) {
	server := testServer(t)
	var errResp api.ErrorResponse
	status := getJSON(
		t,
		server.URL+"/events?query="+url.QueryEscape(testQuery),
		&errResp,
	)
	require.Equal(t, http.StatusNotFound, status)
}

func TestHandleEventsWaitTimeout(t *testing.T) {
	server := testServer(t)
	var errResp api.ErrorResponse
	start := time.Now()
	status := getJSON(
		t,
		server.URL+"/events/wait?timeout=100ms&query="+
			url.QueryEscape(testQuery),
		&errResp,
	)
	require.Equal(t, http.StatusNotFound, status)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestHandleEventsWaitBadTimeout(t *testing.T) {
	server := testServer(t)
	var errResp api.ErrorResponse
	status := getJSON(
		t,
		server.URL+"/events/wait?timeout=bogus&query="+
			url.QueryEscape(testQuery),
		&errResp,
	)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHandleEventsWaitReturnsExistingAtDeadline(t *testing.T) {
	server := testServer(t, event.LogEntry{
		Height: 3,
		Events: []event.Event{event.NewAccepted("DEADBEEF")},
	})
	var events api.EventsResponse
	status := getJSON(
		t,
		server.URL+"/events/wait?timeout=100ms&query="+
			url.QueryEscape(testQuery),
		&events,
	)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, events.Events, 1)
}

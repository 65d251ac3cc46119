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
	"github.com/arroyonet/arroyo/event"
	"github.com/arroyonet/arroyo/eventlog"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the error body for all endpoints.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

// EventResponse represents one matched event.
type EventResponse struct {
	Type       string            `json:"type"`
	Level      string            `json:"level"`
	Attributes map[string]string `json:"attributes"`
}

// EventsResponse is returned by GET /events and GET /events/wait.
type EventsResponse struct {
	Events []EventResponse `json:"events"`
}

func newEventsResponse(iter *eventlog.Iterator) EventsResponse {
	resp := EventsResponse{
		Events: []EventResponse{},
	}
	for {
		evt, ok := iter.Next()
		if !ok {
			return resp
		}
		resp.Events = append(resp.Events, newEventResponse(evt))
	}
}

func newEventResponse(evt event.Event) EventResponse {
	return EventResponse{
		Type:       string(evt.Type),
		Level:      string(evt.Level),
		Attributes: evt.Attributes,
	}
}

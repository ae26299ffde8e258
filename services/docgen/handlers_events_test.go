// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package docgen

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHandleEvents_StreamsDocEvents(t *testing.T) {
	router, svc := newTestRouter(t, RouteOptions{EnableWebsocket: true})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/docs/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	resp.Body.Close()

	// The subscriber registers inside the handler goroutine; wait for it
	// before generating so the event is not published into the void.
	deadline := time.Now().Add(2 * time.Second)
	for svc.Events().SubscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.Events().SubscriberCount() == 0 {
		t.Fatal("websocket subscriber never registered")
	}

	if _, err := svc.GenerateSource(context.Background(), "stream.js", []byte("function f() {}\n")); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var ev DocEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ev.Type != EventGenerated || ev.FilePath != "stream.js" {
		t.Errorf("event = %+v, want EventGenerated for stream.js", ev)
	}
}

func TestHandleEvents_DisabledRouteMissing(t *testing.T) {
	router, _ := newTestRouter(t, RouteOptions{EnableWebsocket: false})

	req := httptest.NewRequest("GET", "/v1/docs/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Without the websocket route, :id matches and rejects the segment.
	if w.Code != 400 {
		t.Errorf("status = %d, want 400 from the :id route", w.Code)
	}
}

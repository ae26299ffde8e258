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

import "sync"

// eventBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this misses events instead of stalling
// generation.
const eventBuffer = 16

// EventHub fans doc change events out to subscribers.
//
// Thread Safety: safe for concurrent use.
type EventHub struct {
	mu     sync.RWMutex
	subs   map[chan DocEvent]struct{}
	closed bool
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		subs: make(map[chan DocEvent]struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel.
// The channel is closed by Unsubscribe or hub Close.
func (h *EventHub) Subscribe() chan DocEvent {
	ch := make(chan DocEvent, eventBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *EventHub) Unsubscribe(ch chan DocEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; !ok {
		return
	}
	delete(h.subs, ch)
	close(ch)
}

// Publish delivers an event to every subscriber without blocking.
// Slow subscribers miss the event.
func (h *EventHub) Publish(ev DocEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			eventsDroppedTotal.Inc()
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (h *EventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close shuts the hub down and closes every subscriber channel.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reminders

import "sync"

// dedupSet remembers which reminders were already sent, keyed by
// "deadlineID:kind", with FIFO eviction at a fixed capacity.
//
// Bounding the set keeps a long-running instance from growing without
// limit; evicting the oldest keys first means a re-notification can only
// happen for deadlines old enough that repeating them is harmless.
type dedupSet struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]struct{}
	order    []string
}

func newDedupSet(capacity int) *dedupSet {
	if capacity <= 0 {
		capacity = 1024
	}
	return &dedupSet{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// MarkIfNew records the key and reports whether it was unseen. Evicts the
// oldest key when full.
func (d *dedupSet) MarkIfNew(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false
	}
	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return true
}

// Len reports the current set size.
func (d *dedupSet) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

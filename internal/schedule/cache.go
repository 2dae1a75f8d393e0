package schedule

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"jobcal/internal/model"
)

const defaultMaxWeeks = 32

// Fingerprint is a content hash of a record snapshot. Two snapshots with the
// same records in the same order share a fingerprint.
func Fingerprint(records []model.ApplicationRecord) string {
	data, err := json.Marshal(records)
	if err != nil {
		// Records are plain strings; Marshal cannot fail on them.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type weekKey struct {
	fingerprint string
	weekStart   int64
	nowMinute   int64
}

// Cache memoizes projection and week layouts keyed by record content,
// week and the minute of "now". It is safe for concurrent use. Returned
// slices are shared and must not be modified.
type Cache struct {
	projector Projector
	maxWeeks  int

	mu          sync.Mutex
	fingerprint string
	events      []model.CalendarEvent
	weeks       map[weekKey]WeekLayout
}

// NewCache builds a Cache around p. maxWeeks bounds the number of memoized
// week layouts; zero picks a default.
func NewCache(p Projector, maxWeeks int) *Cache {
	if maxWeeks <= 0 {
		maxWeeks = defaultMaxWeeks
	}
	return &Cache{
		projector: p,
		maxWeeks:  maxWeeks,
		weeks:     make(map[weekKey]WeekLayout),
	}
}

// Events returns the projection of records, recomputing only when the
// snapshot's fingerprint changed.
func (c *Cache) Events(records []model.ApplicationRecord) []model.CalendarEvent {
	fp := Fingerprint(records)

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eventsLocked(fp, records)
}

// Week returns BuildWeek for records around anchor at now.
func (c *Cache) Week(records []model.ApplicationRecord, anchor, now time.Time) WeekLayout {
	fp := Fingerprint(records)
	key := weekKey{
		fingerprint: fp,
		weekStart:   ResolveWeek(anchor).Start.Unix(),
		nowMinute:   now.Truncate(time.Minute).Unix(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if wl, ok := c.weeks[key]; ok {
		return wl
	}
	events := c.eventsLocked(fp, records)
	wl := BuildWeek(events, anchor, now)
	if len(c.weeks) >= c.maxWeeks {
		clear(c.weeks)
	}
	c.weeks[key] = wl
	return wl
}

func (c *Cache) eventsLocked(fp string, records []model.ApplicationRecord) []model.CalendarEvent {
	if c.events != nil && fp == c.fingerprint {
		return c.events
	}
	c.events = c.projector.Project(records)
	c.fingerprint = fp
	clear(c.weeks)
	return c.events
}

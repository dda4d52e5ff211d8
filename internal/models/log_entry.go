package models

import "time"

// LogEntry is one append-only domain event. The log collection is capped;
// oldest entries are evicted first.
type LogEntry struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
	IP        string         `json:"ip"`
}

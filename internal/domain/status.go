package domain

import "time"

// Status is the operator facing report written by the status file adapter.
type Status struct {
	Port      string        `json:"port"`
	Topic     string        `json:"topic"`
	State     string        `json:"state"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Stats     StatsSnapshot `json:"stats"`
}

// Package queue defines message payloads exchanged over the message broker.
package queue

// LoadCompletedQueue is the durable queue a finished pipeline run is
// announced on.
const LoadCompletedQueue = "etl.load.completed"

// LoadCompletedEvent is published after every pipeline run, successful or
// not. It carries the verification figures so downstream consumers can log
// or alert without querying either store.
type LoadCompletedEvent struct {
	RunID             string   `json:"run_id"`
	StartedAt         string   `json:"started_at"`
	FinishedAt        string   `json:"finished_at"`
	Users             int64    `json:"users"`
	Content           int64    `json:"content"`
	Sessions          int64    `json:"sessions"`
	OrphanUserRefs    int64    `json:"orphan_user_refs"`
	OrphanContentRefs int64    `json:"orphan_content_refs"`
	Passed            bool     `json:"passed"`
	Errors            []string `json:"errors,omitempty"`
}

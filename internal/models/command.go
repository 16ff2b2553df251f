package models

import "time"

const (
	CommandFinished = "finished"
	CommandFailed   = "failed"
)

// CommandRecord is the audit entry kept for every dispatched command.
type CommandRecord struct {
	ID          string         `json:"id"`
	Command     string         `json:"command"`
	Params      map[string]any `json:"params"`
	Status      string         `json:"status"`
	Result      string         `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
	FinishedAt  time.Time      `json:"finished_at"`
}

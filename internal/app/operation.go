package app

import (
	"time"

	"shelf-go/internal/shelf"
)

// Operation identifies one CLI invocation or server run in the log file.
// Every log line written during the operation carries its ID.
type Operation struct {
	ID      string
	Name    string
	Status  string // "success" or "error"
	Started time.Time
}

// NewOperation starts an operation named after the command being run.
func NewOperation(name string, clock shelf.Clock) *Operation {
	now := clock.Now().UTC()
	return &Operation{
		ID:      now.Format("20060102T150405Z"),
		Name:    name,
		Status:  "success",
		Started: now,
	}
}

// Failed reports whether the operation has been marked as failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}

// File: internal/server/types.go
package server

import (
	"context"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/service"
)

// Backend is the application surface the handlers drive. service.Service implements it.
type Backend interface {
	StartSession(ctx context.Context, url string) (schemas.SessionStatus, error)
	PollAndAnnotate(ctx context.Context) (schemas.PollResult, error)
	ListRecords() []schemas.NavigationRecord
	StopSession(ctx context.Context) error
	ClearRecords()
	ExportRecords(format string) (service.Export, error)
	Status() schemas.SessionStatus
}

var _ Backend = (*service.Service)(nil)

// StartRequest is the body of POST /start_navigation.
type StartRequest struct {
	URL string `json:"url"`
}

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success      bool        `json:"success"`
	Error        string      `json:"error,omitempty"`
	Message      string      `json:"message,omitempty"`
	NewEntries   *int        `json:"new_entries,omitempty"`
	TotalEntries *int        `json:"total_entries,omitempty"`
	Data         interface{} `json:"data,omitempty"`
}

// File: internal/service/service.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/config"
	"github.com/xkilldash9x/navscribe/internal/reporting"
)

// Export describes a written report.
type Export struct {
	Path        string
	ContentType string
	Entries     int
}

// Service is the application facade used by the HTTP transport and the CLI. It owns
// the session, the record store and the capture pipeline; there is no package-level
// state.
type Service struct {
	components *Components
	export     config.ExportConfig
	logger     *zap.Logger
}

// New creates a Service over already wired components.
func New(components *Components, export config.ExportConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{components: components, export: export, logger: logger.Named("service")}
}

// NewFromConfig wires production components and returns the Service.
func NewFromConfig(ctx context.Context, cfg config.Interface, logger *zap.Logger) *Service {
	return New(Factory{}.Create(ctx, cfg, logger), cfg.Export(), logger)
}

// StartSession opens a browser on url (or the default URL) and begins capturing.
func (s *Service) StartSession(ctx context.Context, url string) (schemas.SessionStatus, error) {
	status, err := s.components.Controller.Start(ctx, url)
	if err != nil {
		return schemas.SessionStatus{}, err
	}
	status.TotalEntries = s.components.Store.Len()
	return status, nil
}

// PollAndAnnotate runs one capture cycle.
func (s *Service) PollAndAnnotate(ctx context.Context) (schemas.PollResult, error) {
	return s.components.Coordinator.PollAndAnnotate(ctx)
}

// ListRecords returns a copy of every record, oldest first.
func (s *Service) ListRecords() []schemas.NavigationRecord {
	return s.components.Store.All()
}

// StopSession closes the browser. Records are kept. Stopping twice is fine.
func (s *Service) StopSession(ctx context.Context) error {
	return s.components.Controller.Stop(ctx)
}

// ClearRecords drops every record. The session keeps running and events already
// processed in the page are not captured again.
func (s *Service) ClearRecords() {
	s.components.Store.Clear()
}

// ExportRecords writes the records in format, or the configured format when empty.
func (s *Service) ExportRecords(format string) (Export, error) {
	if format == "" {
		format = s.export.Format
	}
	recs := s.components.Store.All()
	if len(recs) == 0 {
		return Export{}, fmt.Errorf("cannot export navigation history: %w", schemas.ErrEmptyExport)
	}

	renderer, err := reporting.New(format, s.export.Dir, s.logger)
	if err != nil {
		return Export{}, err
	}
	path, err := renderer.Render(recs)
	if err != nil {
		return Export{}, err
	}
	return Export{Path: path, ContentType: renderer.ContentType(), Entries: len(recs)}, nil
}

// Status reports the session state and record count.
func (s *Service) Status() schemas.SessionStatus {
	status := s.components.Controller.Status()
	status.TotalEntries = s.components.Store.Len()
	return status
}

// Shutdown stops any running session.
func (s *Service) Shutdown(ctx context.Context) {
	s.components.Shutdown(ctx, s.logger)
}

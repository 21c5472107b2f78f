// File: internal/service/components.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/capture"
	"github.com/xkilldash9x/navscribe/internal/records"
	"github.com/xkilldash9x/navscribe/internal/session"
)

// Components holds the wired pipeline. The Service is its only owner.
type Components struct {
	Launcher    schemas.Launcher
	Controller  *session.Controller
	Store       *records.Store
	Annotator   schemas.Annotator
	Coordinator *capture.Coordinator
}

// Shutdown releases the browser if a session is still running. The records stay in
// memory; nothing else holds external resources.
func (c *Components) Shutdown(ctx context.Context, logger *zap.Logger) {
	logger.Debug("Beginning components shutdown sequence.")
	if c.Controller != nil {
		if err := c.Controller.Stop(ctx); err != nil {
			logger.Warn("Error stopping session during shutdown.", zap.Error(err))
		}
	}
	logger.Info("All components shut down.")
}

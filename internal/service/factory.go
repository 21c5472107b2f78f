// File: internal/service/factory.go
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/navscribe/api/schemas"
	"github.com/xkilldash9x/navscribe/internal/annotate"
	"github.com/xkilldash9x/navscribe/internal/browser"
	"github.com/xkilldash9x/navscribe/internal/capture"
	"github.com/xkilldash9x/navscribe/internal/config"
	"github.com/xkilldash9x/navscribe/internal/records"
	"github.com/xkilldash9x/navscribe/internal/session"
)

// Factory builds Components from configuration. Any field left nil gets its
// production implementation; tests set them to fakes.
type Factory struct {
	Launcher  schemas.Launcher
	Annotator schemas.Annotator
	// Bind overrides how a browser handle becomes an instrumented page.
	Bind capture.PageBinder
}

// Create wires the launcher, session controller, record store, annotator and capture
// coordinator.
func (f Factory) Create(ctx context.Context, cfg config.Interface, logger *zap.Logger) *Components {
	browserCfg := cfg.Browser()

	launcher := f.Launcher
	if launcher == nil {
		launcher = browser.NewLauncher(browserCfg, logger)
	}

	annotator := f.Annotator
	if annotator == nil {
		annotator = annotate.NewFromConfig(ctx, cfg.Annotation(), logger)
	}

	sessionOpts := session.Options{
		DefaultURL:  browserCfg.DefaultURL,
		SettleDelay: browserCfg.SettleDelay,
	}
	coordinatorOpts := []capture.Option{capture.WithConcurrency(cfg.Annotation().Concurrency)}
	if f.Bind != nil {
		bind := f.Bind
		sessionOpts.Bind = func(h schemas.BrowserHandle) schemas.Injector { return bind(h) }
		coordinatorOpts = append(coordinatorOpts, capture.WithPageBinder(bind))
	}

	controller := session.NewController(launcher, sessionOpts, logger)
	store := records.NewStore(logger)
	coordinator := capture.NewCoordinator(controller, store, annotator, logger, coordinatorOpts...)

	logger.Debug("Components initialized.",
		zap.String("annotation_provider", string(cfg.Annotation().Provider)),
		zap.Int("annotation_concurrency", cfg.Annotation().Concurrency))

	return &Components{
		Launcher:    launcher,
		Controller:  controller,
		Store:       store,
		Annotator:   annotator,
		Coordinator: coordinator,
	}
}

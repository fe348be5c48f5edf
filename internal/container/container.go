package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anime-shed/mindtrack-report/internal/config"
	"github.com/anime-shed/mindtrack-report/internal/factory"
	"github.com/anime-shed/mindtrack-report/internal/legibility"
	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/internal/observer"
	"github.com/anime-shed/mindtrack-report/internal/render"
	"github.com/anime-shed/mindtrack-report/internal/service"
	"github.com/anime-shed/mindtrack-report/internal/storage"
	"github.com/anime-shed/mindtrack-report/internal/transport"
	"github.com/anime-shed/mindtrack-report/internal/upstream"
)

// Container holds all application dependencies
type Container struct {
	config        *config.Config
	renderer      *render.Renderer
	pool          *service.WorkerPool
	metrics       *observer.MetricsObserver
	archive       storage.ReportArchive
	engine        legibility.Engine
	reportService service.ReportService
	handler       http.Handler
}

// RendererConfig maps the configured layout tunables onto the renderer defaults
func RendererConfig(cfg *config.Config) (render.Config, error) {
	rc := render.DefaultConfig()
	rc.MaxHeight = cfg.Render.MaxHeight
	rc.SuggestionReserve = cfg.Render.SuggestionReserve
	rc.ActionsReserve = cfg.Render.ActionsReserve
	loc, err := cfg.Location()
	if err != nil {
		return rc, err
	}
	rc.Location = loc
	return rc, nil
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, components *factory.ComponentFactory) (*Container, error) {
	if components == nil {
		components = factory.NewComponentFactory(nil)
	}

	rc, err := RendererConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid render config: %w", err)
	}
	renderer, err := render.New(rc, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	archiveType, err := factory.ParseArchiveType(cfg.Archive.Backend)
	if err != nil {
		return nil, err
	}
	archive, err := components.ArchiveFactory.CreateArchive(archiveType, factory.ArchiveOptions{
		Dir:                   cfg.Archive.Dir,
		AzureConnectionString: cfg.Archive.AzureConnectionString,
		AzureContainer:        cfg.Archive.AzureContainer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	if archive != nil {
		if err := archive.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialise %s archive: %w", archive.Backend(), err)
		}
	}

	var analyzer service.Analyzer
	if cfg.Upstream.BaseURL != "" {
		client, err := upstream.NewClient(upstream.Options{BaseURL: cfg.Upstream.BaseURL, Timeout: cfg.Upstream.Timeout})
		if err != nil {
			return nil, err
		}
		analyzer = client
	}

	var (
		engine  legibility.Engine
		checker *legibility.Checker
	)
	if cfg.OCR.Enabled {
		if components.EngineFactory == nil {
			return nil, fmt.Errorf("OCR_ENABLED is set but no OCR engine is available (build with -tags ocr)")
		}
		engine, err = components.EngineFactory(cfg.OCR.Language)
		if err != nil {
			return nil, fmt.Errorf("failed to create OCR engine: %w", err)
		}
		checker = legibility.NewChecker(engine, cfg.OCR.MaxWER)
	}

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	pool := service.NewWorkerPool(cfg.RenderWorkers)
	pool.Start()

	reportService, err := service.NewReportService(service.Options{
		Renderer:      renderer,
		Pool:          pool,
		Events:        events,
		Archive:       archive,
		Analyzer:      analyzer,
		Checker:       checker,
		RenderTimeout: cfg.RenderTimeout,
	})
	if err != nil {
		pool.Close()
		if engine != nil {
			engine.Close()
		}
		return nil, err
	}

	fields := map[string]interface{}{
		"archive":  archiveType,
		"upstream": cfg.Upstream.BaseURL != "",
		"ocr":      cfg.OCR.Enabled,
		"workers":  pool.GetStats().Workers,
	}
	if checker != nil {
		fields["max_wer"] = checker.MaxWER()
	}
	logger.WithFields(fields).Info("Container initialised")

	return &Container{
		config:        cfg,
		renderer:      renderer,
		pool:          pool,
		metrics:       metrics,
		archive:       archive,
		engine:        engine,
		reportService: reportService,
		handler:       transport.NewHandler(reportService, metrics, cfg),
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// ReportService returns the wired report service
func (c *Container) ReportService() service.ReportService {
	return c.reportService
}

// Close drains the render pool and releases the OCR engine
func (c *Container) Close() error {
	c.pool.Close()
	if c.engine != nil {
		return c.engine.Close()
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/internal/export"
	"github.com/anime-shed/mindtrack-report/internal/legibility"
	"github.com/anime-shed/mindtrack-report/internal/logger"
	"github.com/anime-shed/mindtrack-report/internal/observer"
	"github.com/anime-shed/mindtrack-report/internal/render"
	"github.com/anime-shed/mindtrack-report/internal/storage"
	"github.com/anime-shed/mindtrack-report/pkg/models"
	"github.com/anime-shed/mindtrack-report/pkg/validation"
)

// ReportService renders classification results into downloadable images
type ReportService interface {
	// Export renders, encodes and optionally archives a report
	Export(ctx context.Context, mode models.ReportMode, req ExportRequest) (*Export, error)
	// AnalyzeAndExport classifies text or a post URL upstream, then exports it
	AnalyzeAndExport(ctx context.Context, mode models.ReportMode, req models.AnalyzeRequest) (*Export, error)
	// Verify renders a report and scores how well OCR can read it back
	Verify(ctx context.Context, mode models.ReportMode, req ExportRequest) (*legibility.Result, error)
	// OpenArchived streams a previously archived report. The caller closes it.
	OpenArchived(ctx context.Context, key string) (io.ReadCloser, error)
	ArchivedExists(ctx context.Context, key string) (bool, error)
	PoolStats() PoolStats
}

// Analyzer is the upstream classification API
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*models.ClassificationResult, error)
	AnalyzeURL(ctx context.Context, postURL string) (*models.ClassificationResult, *models.SourcePreview, error)
}

// Renderer lays out and rasterizes reports
type Renderer interface {
	Render(mode models.ReportMode, in render.Input) (*render.Report, error)
}

// ExportRequest is one report to produce
type ExportRequest struct {
	Result  *models.ClassificationResult
	Source  *models.SourcePreview
	Archive bool
}

// Export is a finished PNG report
type Export struct {
	ID          string
	Mode        models.ReportMode
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	// Dropped counts content blocks that did not fit the page
	Dropped int
	// Warnings name list entries left out of the image
	Warnings     []string
	ArchiveKey   string
	ArchiveError string
}

// Options wires a report service. Archive, Analyzer and Checker are
// optional; the features that need them report unavailable when nil.
type Options struct {
	Renderer      Renderer
	Pool          *WorkerPool
	Events        observer.Subject
	Archive       storage.ReportArchive
	Analyzer      Analyzer
	Checker       *legibility.Checker
	RenderTimeout time.Duration
	Now           func() time.Time
}

type reportService struct {
	renderer      Renderer
	pool          *WorkerPool
	events        observer.Subject
	archive       storage.ReportArchive
	analyzer      Analyzer
	checker       *legibility.Checker
	urlValidator  *validation.URLValidator
	textValidator *validation.ResultValidator
	renderTimeout time.Duration
	now           func() time.Time
}

// NewReportService creates a new report service
func NewReportService(opts Options) (ReportService, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("report service requires a renderer")
	}
	if opts.Pool == nil {
		return nil, fmt.Errorf("report service requires a worker pool")
	}
	if opts.Events == nil {
		opts.Events = observer.NewEventPublisher()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &reportService{
		renderer:      opts.Renderer,
		pool:          opts.Pool,
		events:        opts.Events,
		archive:       opts.Archive,
		analyzer:      opts.Analyzer,
		checker:       opts.Checker,
		urlValidator:  validation.NewURLValidator(),
		textValidator: validation.NewResultValidator(),
		renderTimeout: opts.RenderTimeout,
		now:           opts.Now,
	}, nil
}

// Export renders, encodes and optionally archives a report
func (s *reportService) Export(ctx context.Context, mode models.ReportMode, req ExportRequest) (*Export, error) {
	if !mode.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown report mode %q", mode), nil)
	}

	now := s.now()
	exp := &Export{
		ID:          uuid.NewString(),
		Mode:        mode,
		Filename:    export.Filename(mode, now),
		ContentType: export.ContentType,
	}
	start := time.Now()
	s.events.NotifyObservers(ctx, observer.ExportEvent{EventType: observer.ExportStarted, ExportID: exp.ID, Mode: string(mode)})

	rep, data, err := s.render(ctx, mode, render.Input{Result: req.Result, Source: req.Source, GeneratedAt: now}, true)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.ExportEvent{
			EventType:      observer.ExportFailed,
			ExportID:       exp.ID,
			Mode:           string(mode),
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	exp.Data = data
	exp.Width = rep.Document.Width
	exp.Height = rep.Document.Height
	exp.Dropped = rep.Document.Dropped
	exp.Warnings = overflowWarnings(s.textValidator.Inspect(req.Result))

	if req.Archive {
		s.store(ctx, exp)
	}

	s.events.NotifyObservers(ctx, observer.ExportEvent{
		EventType:      observer.ExportCompleted,
		ExportID:       exp.ID,
		Mode:           string(mode),
		ProcessingTime: time.Since(start),
		Success:        true,
		Dropped:        exp.Dropped,
		Metadata: map[string]interface{}{
			"height": exp.Height,
			"bytes":  len(exp.Data),
		},
	})
	return exp, nil
}

func overflowWarnings(issues []validation.ResultIssue) []string {
	var warnings []validation.ResultIssue
	for _, issue := range issues {
		if issue.Severity == "warning" {
			warnings = append(warnings, issue)
		}
	}
	return validation.ConvertIssuesToMessages(warnings)
}

// store archives exp. Failures are recorded on exp and never fail the export.
func (s *reportService) store(ctx context.Context, exp *Export) {
	if s.archive == nil {
		exp.ArchiveError = "archiving is not enabled"
		return
	}
	key := storage.NewReportKey(exp.Mode, exp.Filename)
	if err := s.archive.Save(ctx, key, bytes.NewReader(exp.Data), exp.ContentType); err != nil {
		exp.ArchiveError = err.Error()
		s.events.NotifyObservers(ctx, observer.ExportEvent{
			EventType:    observer.ArchiveFailed,
			ExportID:     exp.ID,
			Mode:         string(exp.Mode),
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"backend": s.archive.Backend()},
		})
		return
	}
	exp.ArchiveKey = key
}

// AnalyzeAndExport classifies text or a post URL upstream, then exports it
func (s *reportService) AnalyzeAndExport(ctx context.Context, mode models.ReportMode, req models.AnalyzeRequest) (*Export, error) {
	if !mode.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown report mode %q", mode), nil)
	}
	text, postURL := strings.TrimSpace(req.Text), strings.TrimSpace(req.URL)
	if (text == "") == (postURL == "") {
		return nil, apperrors.NewValidationError("Exactly one of text or url is required", nil)
	}
	if s.analyzer == nil {
		return nil, apperrors.NewUnavailableError("Analysis API is not configured", nil)
	}

	var (
		result *models.ClassificationResult
		source *models.SourcePreview
		err    error
	)
	if text != "" {
		if err := s.textValidator.ValidateText(text); err != nil {
			return nil, err
		}
		result, err = s.analyzer.AnalyzeText(ctx, text)
	} else {
		if err := s.urlValidator.ValidatePostURL(postURL); err != nil {
			return nil, err
		}
		result, source, err = s.analyzer.AnalyzeURL(ctx, postURL)
	}
	if err != nil {
		logger.WithField("mode", mode).WithError(err).Error("Upstream analysis failed")
		return nil, err
	}

	return s.Export(ctx, mode, ExportRequest{Result: result, Source: source, Archive: req.Archive})
}

// Verify renders a report and scores how well OCR can read it back
func (s *reportService) Verify(ctx context.Context, mode models.ReportMode, req ExportRequest) (*legibility.Result, error) {
	if !mode.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown report mode %q", mode), nil)
	}
	if s.checker == nil {
		return nil, apperrors.NewUnavailableError("Legibility check is disabled", nil)
	}
	rep, _, err := s.render(ctx, mode, render.Input{Result: req.Result, Source: req.Source, GeneratedAt: s.now()}, false)
	if err != nil {
		return nil, err
	}
	return s.checker.Check(ctx, rep.Image, rep.Text())
}

// OpenArchived streams a previously archived report
func (s *reportService) OpenArchived(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.archive == nil {
		return nil, apperrors.NewUnavailableError("Archiving is not enabled", nil)
	}
	return s.archive.Load(ctx, key)
}

// ArchivedExists reports whether key names an archived report
func (s *reportService) ArchivedExists(ctx context.Context, key string) (bool, error) {
	if s.archive == nil {
		return false, apperrors.NewUnavailableError("Archiving is not enabled", nil)
	}
	return s.archive.Exists(ctx, key)
}

// PoolStats reports render pool activity
func (s *reportService) PoolStats() PoolStats {
	return s.pool.GetStats()
}

type renderOutcome struct {
	report *render.Report
	data   []byte
	err    error
}

// render runs one render on the pool. A job whose ctx ended while it was
// queued is skipped. A render that has started runs to completion; when ctx
// ends first the caller gets a timeout and the result is discarded.
func (s *reportService) render(ctx context.Context, mode models.ReportMode, in render.Input, encode bool) (*render.Report, []byte, error) {
	if s.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.renderTimeout)
		defer cancel()
	}

	done := make(chan renderOutcome, 1)
	job := func() {
		var out renderOutcome
		defer func() {
			if r := recover(); r != nil {
				out = renderOutcome{err: apperrors.NewInternalError("Report rendering panicked", fmt.Errorf("%v", r))}
			}
			done <- out
		}()
		if err := ctx.Err(); err != nil {
			out.err = apperrors.NewTimeoutError("Report rendering timed out", err)
			return
		}
		out.report, out.err = s.renderer.Render(mode, in)
		if out.err == nil && encode {
			out.data, out.err = export.Encode(out.report.Image)
		}
	}

	if !s.pool.Submit(ctx, job) {
		if ctx.Err() != nil {
			return nil, nil, apperrors.NewTimeoutError("Timed out waiting for a render worker", ctx.Err())
		}
		return nil, nil, apperrors.NewUnavailableError("Render pool is shut down", nil)
	}

	select {
	case out := <-done:
		return out.report, out.data, out.err
	case <-ctx.Done():
		return nil, nil, apperrors.NewTimeoutError("Report rendering timed out", ctx.Err())
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/anime-shed/mindtrack-report/internal/errors"
	"github.com/anime-shed/mindtrack-report/internal/legibility"
	"github.com/anime-shed/mindtrack-report/internal/observer"
	"github.com/anime-shed/mindtrack-report/internal/render"
	"github.com/anime-shed/mindtrack-report/internal/storage"
	"github.com/anime-shed/mindtrack-report/pkg/models"
)

var exportTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() *models.ClassificationResult {
	return &models.ClassificationResult{
		Sentiment:        models.SentimentStressed,
		Confidence:       0.92,
		Timestamp:        models.NewTimestamp(exportTime),
		DetectedEmotions: []string{"anxious", "overwhelmed"},
		KeyConcerns:      []string{"sleep"},
		AISuggestions:    []models.Suggestion{{Title: "Take a break", Description: "Step away for ten minutes.", Priority: models.PriorityHigh}},
		ImmediateActions: []string{"Breathe slowly"},
	}
}

type failingArchive struct{}

func (failingArchive) Init(context.Context) error { return nil }
func (failingArchive) Save(context.Context, string, io.Reader, string) error {
	return errors.New("disk full")
}
func (failingArchive) Load(context.Context, string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}
func (failingArchive) Exists(context.Context, string) (bool, error) { return false, nil }
func (failingArchive) Backend() string                              { return "failing" }

type fakeAnalyzer struct {
	text string
	url  string
}

func (f *fakeAnalyzer) AnalyzeText(_ context.Context, text string) (*models.ClassificationResult, error) {
	f.text = text
	return sampleResult(), nil
}

func (f *fakeAnalyzer) AnalyzeURL(_ context.Context, postURL string) (*models.ClassificationResult, *models.SourcePreview, error) {
	f.url = postURL
	return sampleResult(), &models.SourcePreview{Platform: "Reddit", Author: "throwaway"}, nil
}

type echoEngine struct{}

func (echoEngine) Recognize(context.Context, image.Image) (string, error) {
	return "MindTrack AI DETECTION STATUS", nil
}
func (echoEngine) Close() error { return nil }

type countingRenderer struct {
	*render.Renderer
	renders atomic.Int64
}

func (c *countingRenderer) Render(mode models.ReportMode, in render.Input) (*render.Report, error) {
	c.renders.Add(1)
	return c.Renderer.Render(mode, in)
}

type testService struct {
	ReportService
	pool    *WorkerPool
	metrics *observer.MetricsObserver
}

func newTestService(t *testing.T, mutate func(*Options)) *testService {
	t.Helper()
	r, err := render.New(render.DefaultConfig(), nil)
	require.NoError(t, err)

	pool := NewWorkerPool(2)
	pool.Start()
	t.Cleanup(pool.Close)

	metrics := observer.NewMetricsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(metrics)

	opts := Options{
		Renderer: r,
		Pool:     pool,
		Events:   events,
		Now:      func() time.Time { return exportTime },
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewReportService(opts)
	require.NoError(t, err)
	return &testService{ReportService: svc, pool: pool, metrics: metrics}
}

func TestNewReportService_RequiresDependencies(t *testing.T) {
	_, err := NewReportService(Options{})
	assert.Error(t, err)
}

func TestExport_Summary(t *testing.T) {
	defer goleak.VerifyNone(t)
	svc := newTestService(t, nil)
	defer svc.pool.Close()

	exp, err := svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	require.NoError(t, err)

	assert.Equal(t, "mindtrack-analysis-1748779200000.png", exp.Filename)
	assert.Equal(t, "image/png", exp.ContentType)
	assert.Equal(t, 1200, exp.Width)
	assert.Equal(t, 630, exp.Height)
	assert.NotEmpty(t, exp.ID)

	img, err := png.Decode(bytes.NewReader(exp.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1200, 630), img.Bounds())

	m := svc.metrics.GetMetrics()
	assert.Equal(t, int64(1), m["total_exports"])
	assert.Equal(t, int64(1), m["successful_exports"])
}

func TestExport_CompleteArchivesLocally(t *testing.T) {
	defer goleak.VerifyNone(t)
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, archive.Init(context.Background()))

	svc := newTestService(t, func(o *Options) { o.Archive = archive })
	defer svc.pool.Close()
	exp, err := svc.Export(context.Background(), models.ModeComplete, ExportRequest{Result: sampleResult(), Archive: true})
	require.NoError(t, err)

	assert.Equal(t, "mindtrack-complete-report-1748779200000.png", exp.Filename)
	assert.Greater(t, exp.Height, 630)
	assert.True(t, strings.HasPrefix(exp.ArchiveKey, "complete/"), exp.ArchiveKey)
	assert.Empty(t, exp.ArchiveError)

	rc, err := archive.Load(context.Background(), exp.ArchiveKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, exp.Data, stored)
}

func TestExport_ArchiveFailureDoesNotFailExport(t *testing.T) {
	svc := newTestService(t, func(o *Options) { o.Archive = failingArchive{} })

	exp, err := svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult(), Archive: true})
	require.NoError(t, err)
	assert.NotEmpty(t, exp.Data)
	assert.Empty(t, exp.ArchiveKey)
	assert.Equal(t, "disk full", exp.ArchiveError)
	assert.Equal(t, int64(1), svc.metrics.GetMetrics()["archive_failures"])
}

func TestExport_ArchiveRequestedButDisabled(t *testing.T) {
	svc := newTestService(t, nil)
	exp, err := svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult(), Archive: true})
	require.NoError(t, err)
	assert.Equal(t, "archiving is not enabled", exp.ArchiveError)
}

func TestExport_InvalidInput(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Export(ctx, models.ReportMode("poster"), ExportRequest{Result: sampleResult()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.Export(ctx, models.ModeSummary, ExportRequest{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	bad := sampleResult()
	bad.Confidence = 1.5
	_, err = svc.Export(ctx, models.ModeComplete, ExportRequest{Result: bad})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	assert.Equal(t, int64(2), svc.metrics.GetMetrics()["failed_exports"])
}

func TestExport_TimesOutWhileWorkersBusy(t *testing.T) {
	defer goleak.VerifyNone(t)
	svc := newTestService(t, func(o *Options) { o.RenderTimeout = 30 * time.Millisecond })
	defer svc.pool.Close()

	release := make(chan struct{})
	for i := 0; i < 2; i++ {
		require.True(t, svc.pool.Submit(context.Background(), func() { <-release }))
	}

	_, err := svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout), "got %v", err)

	close(release)
	svc.pool.Close()
}

func TestExport_SkipsJobsExpiredInQueue(t *testing.T) {
	defer goleak.VerifyNone(t)
	base, err := render.New(render.DefaultConfig(), nil)
	require.NoError(t, err)
	counter := &countingRenderer{Renderer: base}

	pool := NewWorkerPool(1)
	pool.Start()
	defer pool.Close()
	svc, err := NewReportService(Options{Renderer: counter, Pool: pool, Now: func() time.Time { return exportTime }})
	require.NoError(t, err)

	release := make(chan struct{})
	require.True(t, pool.Submit(context.Background(), func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = svc.Export(ctx, models.ModeSummary, ExportRequest{Result: sampleResult()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout), "got %v", err)

	close(release)
	require.Eventually(t, func() bool { return pool.GetStats().Completed == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), counter.renders.Load())

	_, err = svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.renders.Load())
}

func TestExport_OverflowWarnings(t *testing.T) {
	svc := newTestService(t, nil)

	result := sampleResult()
	result.AISuggestions = append(result.AISuggestions,
		models.Suggestion{Title: "Walk", Description: "Short walk outside.", Priority: models.PriorityLow},
		models.Suggestion{Title: "Call a friend", Description: "Talk it through.", Priority: models.PriorityMedium},
		models.Suggestion{Title: "Sleep", Description: "Aim for eight hours.", Priority: models.PriorityHigh},
	)

	exp, err := svc.Export(context.Background(), models.ModeComplete, ExportRequest{Result: result})
	require.NoError(t, err)
	assert.Equal(t, []string{"only the first 3 of 4 entries are shown"}, exp.Warnings)

	exp, err = svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	require.NoError(t, err)
	assert.Empty(t, exp.Warnings)
}

func TestOpenArchived(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, archive.Init(context.Background()))
	svc := newTestService(t, func(o *Options) { o.Archive = archive })
	ctx := context.Background()

	exp, err := svc.Export(ctx, models.ModeSummary, ExportRequest{Result: sampleResult(), Archive: true})
	require.NoError(t, err)

	ok, err := svc.ArchivedExists(ctx, exp.ArchiveKey)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := svc.OpenArchived(ctx, exp.ArchiveKey)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, exp.Data, stored)

	_, err = svc.OpenArchived(ctx, "summary/missing.png")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestOpenArchived_Disabled(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.OpenArchived(context.Background(), "summary/x.png")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
	_, err = svc.ArchivedExists(context.Background(), "summary/x.png")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func TestExport_ConcurrentExportsAreIndependent(t *testing.T) {
	svc := newTestService(t, nil)

	type res struct {
		exp *Export
		err error
	}
	out := make(chan res, 2)
	for i := 0; i < 2; i++ {
		go func() {
			exp, err := svc.Export(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
			out <- res{exp, err}
		}()
	}
	a, b := <-out, <-out
	require.NoError(t, a.err)
	require.NoError(t, b.err)
	assert.NotEqual(t, a.exp.ID, b.exp.ID)
	assert.Equal(t, a.exp.Data, b.exp.Data)
}

func TestAnalyzeAndExport(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	svc := newTestService(t, func(o *Options) { o.Analyzer = analyzer })
	ctx := context.Background()

	exp, err := svc.AnalyzeAndExport(ctx, models.ModeSummary, models.AnalyzeRequest{Text: "  finals week  "})
	require.NoError(t, err)
	assert.Equal(t, "finals week", analyzer.text)
	assert.NotEmpty(t, exp.Data)

	_, err = svc.AnalyzeAndExport(ctx, models.ModeSummary, models.AnalyzeRequest{URL: "https://reddit.com/r/x/1"})
	require.NoError(t, err)
	assert.Equal(t, "https://reddit.com/r/x/1", analyzer.url)

	_, err = svc.AnalyzeAndExport(ctx, models.ModeSummary, models.AnalyzeRequest{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.AnalyzeAndExport(ctx, models.ModeSummary, models.AnalyzeRequest{Text: "a", URL: "https://x.com"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	_, err = svc.AnalyzeAndExport(ctx, models.ModeSummary, models.AnalyzeRequest{URL: "ftp://x.com/file"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestAnalyzeAndExport_WithoutAnalyzer(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.AnalyzeAndExport(context.Background(), models.ModeSummary, models.AnalyzeRequest{Text: "hello"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func TestVerify(t *testing.T) {
	svc := newTestService(t, func(o *Options) { o.Checker = legibility.NewChecker(echoEngine{}, 0) })

	res, err := svc.Verify(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	require.NoError(t, err)
	assert.Greater(t, res.ExpectedWords, res.RecognizedWords)
	assert.Equal(t, 4, res.RecognizedWords)
	assert.Contains(t, res.ExpectedText, "DETECTION STATUS")
	assert.Greater(t, res.Sharpness, 0.0)
}

func TestVerify_Disabled(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Verify(context.Background(), models.ModeSummary, ExportRequest{Result: sampleResult()})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

package container

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/mindtrack-report/internal/config"
	"github.com/anime-shed/mindtrack-report/internal/factory"
	"github.com/anime-shed/mindtrack-report/internal/legibility"
)

type nopEngine struct{ closed *bool }

func (nopEngine) Recognize(context.Context, image.Image) (string, error) { return "", nil }
func (e nopEngine) Close() error {
	*e.closed = true
	return nil
}

func TestNewContainer_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, err := NewContainer(context.Background(), config.Defaults(), nil)
	require.NoError(t, err)
	defer c.Close()

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, c.ReportService())
	assert.Equal(t, "8080", c.Config().Port)
}

func TestNewContainer_LocalArchiveAndOCR(t *testing.T) {
	cfg := config.Defaults()
	cfg.Archive.Backend = "local"
	cfg.Archive.Dir = t.TempDir()
	cfg.OCR.Enabled = true
	cfg.Upstream.BaseURL = "http://localhost:5000/api"

	closed := false
	components := factory.NewComponentFactory(func(language string) (legibility.Engine, error) {
		assert.Equal(t, "eng", language)
		return nopEngine{closed: &closed}, nil
	})

	c, err := NewContainer(context.Background(), cfg, components)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.True(t, closed)
}

func TestNewContainer_Errors(t *testing.T) {
	t.Run("unknown archive backend", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Archive.Backend = "s3"
		_, err := NewContainer(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("OCR without engine", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.OCR.Enabled = true
		_, err := NewContainer(context.Background(), cfg, nil)
		assert.Error(t, err)
	})

	t.Run("engine init failure", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.OCR.Enabled = true
		components := factory.NewComponentFactory(func(string) (legibility.Engine, error) {
			return nil, errors.New("libtesseract missing")
		})
		_, err := NewContainer(context.Background(), cfg, components)
		assert.ErrorContains(t, err, "libtesseract missing")
	})

	t.Run("bad upstream URL", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Upstream.BaseURL = "ftp://example.com"
		_, err := NewContainer(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}

func TestRendererConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Render.MaxHeight = 2400
	cfg.Render.Timezone = "Asia/Kolkata"

	rc, err := RendererConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2400, rc.MaxHeight)
	assert.Equal(t, 1200, rc.Width)
	assert.Equal(t, "Asia/Kolkata", rc.Location.String())
}

package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/mindtrack-report/pkg/models"
)

// Azurite's well known development account
const devConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func TestNewReportKey(t *testing.T) {
	key := NewReportKey(models.ModeComplete, "mindtrack-complete-report-1.png")

	assert.True(t, strings.HasPrefix(key, "complete/"), key)
	assert.True(t, strings.HasSuffix(key, "-mindtrack-complete-report-1.png"), key)
	assert.NoError(t, validateKey(key))
	assert.NotEqual(t, key, NewReportKey(models.ModeComplete, "mindtrack-complete-report-1.png"))

	// directory parts of the filename never leak into the key
	sneaky := NewReportKey(models.ModeSummary, "../../etc/passwd")
	assert.True(t, strings.HasPrefix(sneaky, "summary/"), sneaky)
	assert.NoError(t, validateKey(sneaky))
}

func TestValidateKey(t *testing.T) {
	assert.ErrorIs(t, validateKey(""), ErrEmptyKey)
	assert.ErrorIs(t, validateKey("summary/../x.png"), ErrInvalidKey)
	assert.ErrorIs(t, validateKey("/abs/x.png"), ErrInvalidKey)
	assert.NoError(t, validateKey("summary/x.png"))
}

func TestMapHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MapHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, MapHTTPStatus(ErrEmptyKey))
	assert.Equal(t, http.StatusBadRequest, MapHTTPStatus(ErrInvalidKey))
	assert.Equal(t, http.StatusInternalServerError, MapHTTPStatus(io.ErrUnexpectedEOF))
}

func TestLocalArchive_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "reports")

	archive, err := NewLocalArchive(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", archive.Backend())
	require.NoError(t, archive.Init(ctx))

	key := "summary/abc-mindtrack-analysis-1.png"
	payload := []byte("\x89PNG fake report")

	exists, err := archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, archive.Save(ctx, key, bytes.NewReader(payload), "image/png"))

	exists, err = archive.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := archive.Load(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "summary"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLocalArchive_MissingAndInvalidKeys(t *testing.T) {
	ctx := context.Background()
	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	_, err = archive.Load(ctx, "summary/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)

	err = archive.Save(ctx, "../escape.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = archive.Exists(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestLocalArchive_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	archive, err := NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	err = archive.Save(ctx, "summary/x.png", strings.NewReader("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLocalArchive_RequiresDirectory(t *testing.T) {
	_, err := NewLocalArchive("")
	assert.Error(t, err)
}

func TestNewAzureArchive(t *testing.T) {
	_, err := NewAzureArchive("not a connection string", "reports")
	assert.Error(t, err)

	_, err = NewAzureArchive(devConnectionString, "")
	assert.Error(t, err)

	archive, err := NewAzureArchive(devConnectionString, "reports")
	require.NoError(t, err)
	assert.Equal(t, "azure", archive.Backend())

	// keys are checked before any request is made
	ctx := context.Background()
	assert.ErrorIs(t, archive.Save(ctx, "a/../b.png", strings.NewReader("x"), "image/png"), ErrInvalidKey)
	_, err = archive.Load(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyKey)
	_, err = archive.Exists(ctx, "/root.png")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

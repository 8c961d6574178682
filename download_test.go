package subjectdl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"
)

func TestDownloadBuilderRequiresTargetPath(t *testing.T) {
	assert := assert_.New(t)

	_, err := NewDownloadBuilder().Build()
	assert.Error(err)
}

func TestDownloadSaveStream(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	target := filepath.Join(t.TempDir(), "subdir", "video.mp4")
	var gotDownloaded, gotExpected int64
	d, err := NewDownloadBuilder().
		WithTargetPath(target).
		WithProgressCallback(func(downloaded int64, expected int64) {
			gotDownloaded, gotExpected = downloaded, expected
		}).
		Build()
	require.NoError(err)
	defer d.Close()

	content := strings.Repeat("x", 1024)
	d.AddExpectedBytes(int64(len(content)))
	require.NoError(d.SaveStream(strings.NewReader(content)))

	// Parent directory is created on demand, content lands at the target path.
	data, err := os.ReadFile(target)
	require.NoError(err)
	assert.Equal(content, string(data))

	downloaded, expected := d.Progress()
	assert.Equal(int64(1024), downloaded)
	assert.Equal(int64(1024), expected)
	assert.Equal(int64(1024), gotDownloaded)
	assert.Equal(int64(1024), gotExpected)
	assert.Equal(target, d.TargetPath())
}

func TestDownloadSaveStreamCancelled(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	d, err := NewDownloadBuilder().
		WithContext(ctx).
		WithTargetPath(filepath.Join(t.TempDir(), "video.mp4")).
		Build()
	require.NoError(err)
	defer d.Close()

	cancel()
	err = d.SaveStream(strings.NewReader("should not be read"))
	assert.ErrorIs(err, context.Canceled)
}

func TestDownloadSetProgress(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	d, err := NewDownloadBuilder().
		WithTargetPath(filepath.Join(t.TempDir(), "video.mp4")).
		Build()
	require.NoError(err)
	defer d.Close()

	d.SetProgress(10, 100)
	downloaded, expected := d.Progress()
	assert.Equal(int64(10), downloaded)
	assert.Equal(int64(100), expected)

	// An unknown total must not wipe out a previously reported one.
	d.SetProgress(20, 0)
	downloaded, expected = d.Progress()
	assert.Equal(int64(20), downloaded)
	assert.Equal(int64(100), expected)
}

func TestDownloadSaveURL(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("media bytes"))
	}))
	defer server.Close()

	target := filepath.Join(t.TempDir(), "video.mp4")
	d, err := NewDownloadBuilder().WithTargetPath(target).Build()
	require.NoError(err)
	defer d.Close()

	require.NoError(d.SaveURL(server.URL + "/video.mp4"))
	data, err := os.ReadFile(target)
	require.NoError(err)
	assert.Equal("media bytes", string(data))
}

func TestDownloadSaveURLHTTPError(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	d, err := NewDownloadBuilder().
		WithTargetPath(filepath.Join(t.TempDir(), "video.mp4")).
		Build()
	require.NoError(err)
	defer d.Close()

	assert.Error(d.SaveURL(server.URL + "/missing.mp4"))
}

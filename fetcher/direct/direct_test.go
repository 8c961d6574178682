package direct

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	require_ "github.com/stretchr/testify/require"

	"github.com/mjarret/subjectdl"
)

func TestMatch(t *testing.T) {
	assert := assert_.New(t)

	config := NewConfig()
	source, err := config.Match("https://example.com/media/lecture-01.mp4")
	assert.NoError(err)
	assert.Equal("https://example.com/media/lecture-01.mp4", source.URL())

	assert.Nil(source.Info())
	assert.NoError(source.Recon(context.Background()))
	info := source.Info()
	assert.NotNil(info)
	assert.Equal("lecture-01", info.Title)
	assert.Equal("lecture-01.mp4", info.ID)
}

func TestMatchRejects(t *testing.T) {
	assert := assert_.New(t)

	config := NewConfig()
	for _, input := range []string{
		"ftp://example.com/lecture.mp4",
		"https://example.com/",
		"https://example.com/page.html",
		"https://example.com/noextension",
	} {
		_, err := config.Match(input)
		assert.Error(err, "input: %q", input)
	}
}

func TestFetch(t *testing.T) {
	assert := assert_.New(t)
	require := require_.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("video payload"))
	}))
	defer server.Close()

	config := NewConfig()
	source, err := config.Match(server.URL + "/lecture.mp4")
	require.NoError(err)
	require.NoError(source.Recon(context.Background()))

	target := filepath.Join(t.TempDir(), "lecture.mp4")
	download, err := subjectdl.NewDownloadBuilder().WithTargetPath(target).Build()
	require.NoError(err)
	defer download.Close()

	require.NoError(source.Fetch(download))
	data, err := os.ReadFile(target)
	require.NoError(err)
	assert.Equal("video payload", string(data))

	downloaded, expected := download.Progress()
	assert.Equal(int64(len("video payload")), downloaded)
	assert.Equal(downloaded, expected)
}

package subjectdl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// A Download is the state of one transfer towards a known target path. Sources write through it so that progress
// accounting and cancellation work the same for every backend.
type Download interface {
	// AddDownloadedBytes increases how many bytes have been successfully downloaded so far.
	AddDownloadedBytes(n int64)

	// AddExpectedBytes increases how many bytes are expected to be downloaded.
	AddExpectedBytes(n int64)

	// SetProgress replaces both counters, for backends that report absolute totals instead of increments.
	SetProgress(downloaded int64, expected int64)

	// Cancel the Download, stopping any in-progress I/O activity.
	Cancel()

	// Close cleans up any resources associated with the Download.
	Close() error

	// Context is the cancellable context of this Download.
	Context() context.Context

	// TargetPath is the file the transfer must produce.
	TargetPath() string

	// CreateTarget creates the target file, creating parent directories as needed.
	CreateTarget() (io.WriteCloser, error)

	// Progress returns the downloaded and expected bytes of the download.
	Progress() (int64, int64)

	// SaveHTTPRequest will execute the http.Request with Context() and then download the resulting stream like SaveStream.
	SaveHTTPRequest(req *http.Request) error

	// SaveStream will download the stream to the target path, calling AddDownloadedBytes as necessary. The copy
	// stops early if the Download's context is cancelled.
	SaveStream(stream io.Reader) error

	// SaveURL will make a GET request to the URL and then download the resulting stream like SaveStream.
	SaveURL(url string) error

	// Write will ignore the data but will send the byte count to AddDownloadedBytes. Allows progress tracking using
	// io.MultiWriter (but ensure the Download is the last writer to avoid counting failed writes).
	Write(p []byte) (n int, err error)
}

type download struct {
	ctx              context.Context
	cancel           context.CancelFunc
	progressCallback func(int64, int64)
	targetPath       string
	expectedBytes    int64
	downloadedBytes  int64
}

func (d *download) AddDownloadedBytes(n int64) {
	d.downloadedBytes += n
	d.notifyProgress()
}

func (d *download) AddExpectedBytes(n int64) {
	d.expectedBytes += n
	d.notifyProgress()
}

func (d *download) SetProgress(downloaded int64, expected int64) {
	d.downloadedBytes = downloaded
	if expected > 0 {
		d.expectedBytes = expected
	}
	d.notifyProgress()
}

func (d *download) Cancel() {
	d.cancel()
}

func (d *download) Close() error {
	d.cancel()
	return nil
}

func (d *download) Context() context.Context {
	return d.ctx
}

func (d *download) TargetPath() string {
	return d.targetPath
}

func (d *download) CreateTarget() (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(d.targetPath), 0775); err != nil {
		return nil, err
	}
	return os.Create(d.targetPath)
}

func (d *download) Progress() (int64, int64) {
	return d.downloadedBytes, d.expectedBytes
}

func (d *download) SaveHTTPRequest(req *http.Request) error {
	if req == nil {
		return fmt.Errorf("nil request")
	}
	req = req.WithContext(d.Context())
	client := http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("download failed: %v", resp.Status)
	}
	if resp.ContentLength > 0 {
		d.AddExpectedBytes(resp.ContentLength)
	}
	return d.SaveStream(resp.Body)
}

func (d *download) SaveStream(stream io.Reader) error {
	f, err := d.CreateTarget()
	if err != nil {
		return fmt.Errorf("failed to open target file: %w", err)
	}
	defer f.Close()

	// Wrapping the stream makes the copy abort on context cancellation even when the underlying reader would block.
	_, err = io.Copy(io.MultiWriter(f, d), &readerContext{ctx: d.ctx, r: stream})
	if err != nil {
		return fmt.Errorf("failed to save stream: %w", err)
	}
	return nil
}

func (d *download) SaveURL(url string) error {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return d.SaveHTTPRequest(req)
}

func (d *download) Write(p []byte) (n int, err error) {
	n = len(p)
	d.AddDownloadedBytes(int64(n))
	return n, nil
}

func (d *download) notifyProgress() {
	if d.progressCallback != nil {
		d.progressCallback(d.Progress())
	}
}

type DownloadBuilder interface {
	Build() (Download, error)
	WithContext(ctx context.Context) DownloadBuilder
	WithProgressCallback(f func(downloaded int64, expected int64)) DownloadBuilder
	WithTargetPath(path string) DownloadBuilder
}

type downloadBuilder struct {
	ctx              context.Context
	progressCallback func(int64, int64)
	targetPath       string
}

func NewDownloadBuilder() DownloadBuilder {
	return &downloadBuilder{
		ctx: context.Background(),
	}
}

func (b *downloadBuilder) Build() (Download, error) {
	if b.targetPath == "" {
		return nil, fmt.Errorf("no target path configured")
	}
	d := download{}
	d.ctx, d.cancel = context.WithCancel(b.ctx)
	d.progressCallback = b.progressCallback
	d.targetPath = b.targetPath
	return &d, nil
}

func (b *downloadBuilder) WithContext(ctx context.Context) DownloadBuilder {
	b.ctx = ctx
	return b
}

func (b *downloadBuilder) WithProgressCallback(f func(int64, int64)) DownloadBuilder {
	b.progressCallback = f
	return b
}

func (b *downloadBuilder) WithTargetPath(path string) DownloadBuilder {
	b.targetPath = path
	return b
}

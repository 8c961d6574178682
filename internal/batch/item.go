package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mjarret/subjectdl"
)

// An Outcome classifies one URL's processing. It is a value, not an error: downloadOne absorbs every fault.
type Outcome struct {
	Success bool
	// Skipped means the expected file already existed and no transfer was attempted.
	Skipped  bool
	Duration time.Duration
	Size     int64
	Path     string
	Err      error
}

// downloadOne processes a single URL to completion. It never returns an error; faults become a failed Outcome
// with an error-severity log line. A pre-existing file at the expected path is reported as an immediate success
// with zero duration and the existing file's size.
func (p *Processor) downloadOne(ctx context.Context, url string, dir string) Outcome {
	log := subjectdl.Logger(ctx).Sugar()
	start := time.Now()
	fail := func(err error) Outcome {
		log.Errorf("failed to download %s: %v", url, err)
		return Outcome{Duration: time.Since(start), Err: err}
	}

	// A configured provider name bypasses priority matching, so the lower-priority backends
	// stay reachable behind the catch-all yt-dlp provider.
	var match *subjectdl.Match
	var err error
	if p.config.Provider != "" {
		match, err = p.registry.MatchWith(p.config.Provider, url)
	} else {
		match, err = p.registry.Match(url)
	}
	if err != nil {
		return fail(fmt.Errorf("match failed: %w", err))
	}
	source := match.Source

	if err := source.Recon(ctx); err != nil {
		return fail(fmt.Errorf("recon failed: %w", err))
	}
	filename, err := p.config.TargetFilename(source.Info())
	if err != nil {
		return fail(err)
	}
	target := filepath.Join(dir, filename)

	if fi, err := os.Stat(target); err == nil {
		log.Infof("skipping download, file already exists: %s (size: %.2f MB)", target, float64(fi.Size())/1024/1024)
		return Outcome{Success: true, Skipped: true, Size: fi.Size(), Path: target}
	}

	builder := subjectdl.NewDownloadBuilder().
		WithContext(ctx).
		WithTargetPath(target)
	var bar *progressbar.ProgressBar
	if p.progress {
		bar = progressbar.DefaultBytes(1, "downloading")
		builder.WithProgressCallback(func(downloaded int64, expected int64) {
			if expected > 0 && int64(bar.GetMax()) != expected {
				bar.ChangeMax64(expected)
			}
			_ = bar.Set64(downloaded)
		})
	}
	download, err := builder.Build()
	if err != nil {
		return fail(err)
	}
	defer download.Close()

	if err := source.Fetch(download); err != nil {
		return fail(fmt.Errorf("download failed: %w", err))
	}
	if bar != nil {
		_ = bar.Finish()
	}

	// A fetch that reports success but leaves no file at the expected path broke its contract; counting it as a
	// zero-byte success would let TotalSizeMB claim bytes that do not exist.
	fi, err := os.Stat(target)
	if err != nil {
		return fail(fmt.Errorf("fetch reported success but %s is missing", target))
	}

	duration := time.Since(start)
	log.Infof("successfully downloaded: %s to %s (size: %.2f MB, time: %.2fs)",
		url, target, float64(fi.Size())/1024/1024, duration.Seconds())
	return Outcome{Success: true, Duration: duration, Size: fi.Size(), Path: target}
}

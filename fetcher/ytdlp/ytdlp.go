// Package ytdlp is the default fetcher backend, delegating extraction, transfer and container merging to the
// yt-dlp binary via github.com/lrstanley/go-ytdlp.
package ytdlp

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/mjarret/subjectdl"
)

const progressInterval = 500 * time.Millisecond

// Config carries the fixed download options: best available video+audio merged into one container, resumable
// transfers.
type Config struct {
	Format    string
	Container string
}

func NewConfig() Config {
	return Config{
		Format:    subjectdl.DefaultFormat,
		Container: subjectdl.DefaultContainer,
	}
}

func (c *Config) Match(s string) (subjectdl.Source, error) {
	parsedURL, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unknown URL scheme %v", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return nil, fmt.Errorf("missing host")
	}
	return &source{url: s, config: *c}, nil
}

func (c Config) Provider() subjectdl.Provider {
	return subjectdl.Provider{
		Name:  "ytdlp",
		Match: c.Match,
	}
}

type source struct {
	url    string
	config Config
	info   *subjectdl.MediaInfo
}

func (s *source) URL() string {
	return s.url
}

func (s *source) String() string {
	return s.URL()
}

func (s *source) Info() *subjectdl.MediaInfo {
	return s.info
}

// Recon asks yt-dlp for the extracted metadata without transferring anything.
func (s *source) Recon(ctx context.Context) error {
	dl := ytdlp.New().
		SkipDownload().
		Format(s.config.Format)
	result, err := dl.Run(ctx, s.url)
	if err != nil {
		return fmt.Errorf("failed to get video info: %w", err)
	}
	infos, err := result.GetExtractedInfo()
	if err != nil {
		return fmt.Errorf("failed to parse video info: %w", err)
	}
	if len(infos) == 0 {
		return fmt.Errorf("no video info extracted")
	}
	info := subjectdl.MediaInfo{}
	info.ID = infos[0].ID
	if infos[0].Title != nil {
		info.Title = *infos[0].Title
	}
	s.info = &info
	return nil
}

// outputTemplate escapes yt-dlp output template directives so the literal target path survives
// expansion. Titles may legitimately contain "%".
func outputTemplate(path string) string {
	return strings.ReplaceAll(path, "%", "%%")
}

func (s *source) Fetch(d subjectdl.Download) error {
	dl := ytdlp.New().
		Format(s.config.Format).
		MergeOutputFormat(s.config.Container).
		Continue().
		Output(outputTemplate(d.TargetPath()))
	dl.ProgressFunc(progressInterval, func(update ytdlp.ProgressUpdate) {
		d.SetProgress(int64(update.DownloadedBytes), int64(update.TotalBytes))
	})
	if _, err := dl.Run(d.Context(), s.url); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return nil
}

func init() {
	subjectdl.DefaultProviderRegistry.MustAdd(
		NewConfig().Provider().WithPriority(subjectdl.PriorityHighest),
	)
}

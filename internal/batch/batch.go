// Package batch orchestrates one run: walk the subject mapping in order, download every URL sequentially, and
// aggregate run metrics. Per-item failures never abort the batch; structural failures halt it with whatever
// metrics had accumulated.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mjarret/subjectdl"
	"github.com/mjarret/subjectdl/internal/history"
	"github.com/mjarret/subjectdl/internal/subjects"
)

// Metrics are the run-scoped aggregate counters. Counts and sums only increase, and
// TotalVideos == SuccessfulDownloads + FailedDownloads holds after every processed item.
type Metrics struct {
	TotalVideos         int
	SuccessfulDownloads int
	FailedDownloads     int
	// TotalSizeMB only counts bytes from successful items.
	TotalSizeMB float64
	TotalTime   time.Duration
}

func (m Metrics) String() string {
	return fmt.Sprintf("{total_videos: %d, successful_downloads: %d, failed_downloads: %d, total_size_mb: %.2f, total_time_s: %.2f}",
		m.TotalVideos, m.SuccessfulDownloads, m.FailedDownloads, m.TotalSizeMB, m.TotalTime.Seconds())
}

type Processor struct {
	config   *subjectdl.Config
	registry *subjectdl.ProviderRegistry
	history  *history.Store
	progress bool
}

func New(config *subjectdl.Config, registry *subjectdl.ProviderRegistry) *Processor {
	return &Processor{
		config:   config,
		registry: registry,
	}
}

// UseHistory makes the processor record fresh successful downloads to the store.
func (p *Processor) UseHistory(store *history.Store) *Processor {
	p.history = store
	return p
}

// ShowProgress enables a console progress bar for each transfer.
func (p *Processor) ShowProgress(show bool) *Processor {
	p.progress = show
	return p
}

// Run loads the subject mapping and processes it. Structural failures (missing or malformed subjects file) are
// logged once at error severity and yield zero-valued metrics; they never become a crash.
func (p *Processor) Run(ctx context.Context) Metrics {
	log := subjectdl.Logger(ctx).Sugar().With("run", uuid.NewString()[:8])
	ctx = subjectdl.WithLogger(ctx, log.Desugar())

	if err := os.MkdirAll(p.config.BaseDir, 0775); err != nil {
		log.Errorf("failed to create base directory %s: %v", p.config.BaseDir, err)
		return Metrics{}
	}
	log.Infof("using base directory: %s", p.config.BaseDir)

	mapping, err := subjects.Load(p.config.SubjectsFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Errorf("subjects file %q not found", p.config.SubjectsFile)
		} else {
			log.Errorf("failed to read subjects file: %v", err)
		}
		return Metrics{}
	}

	return p.Process(ctx, mapping)
}

// Process downloads every URL of every subject, in mapping order, one at a time.
func (p *Processor) Process(ctx context.Context, mapping subjects.Mapping) Metrics {
	log := subjectdl.Logger(ctx).Sugar()
	metrics := Metrics{}

	for _, subject := range mapping {
		subjectDir := filepath.Join(p.config.BaseDir, subject.Name)
		if err := os.MkdirAll(subjectDir, 0775); err != nil {
			log.Errorf("failed to create subject directory %s: %v", subjectDir, err)
			return metrics
		}
		log.Infof("processing subject: %s (folder: %s)", subject.Name, subjectDir)

		for _, url := range subject.URLs {
			metrics.TotalVideos++
			log.Infof("starting download for %s in %s", url, subject.Name)

			outcome := p.downloadOne(ctx, url, subjectDir)
			metrics.TotalTime += outcome.Duration
			if outcome.Success {
				metrics.SuccessfulDownloads++
				metrics.TotalSizeMB += float64(outcome.Size) / 1024 / 1024
				p.record(log, subject.Name, url, outcome)
			} else {
				metrics.FailedDownloads++
			}
		}
	}

	log.Infof("download summary: %d/%d successful, total size: %.2f MB, total time: %.2fs",
		metrics.SuccessfulDownloads, metrics.TotalVideos, metrics.TotalSizeMB, metrics.TotalTime.Seconds())
	return metrics
}

func (p *Processor) record(log *zap.SugaredLogger, subject string, url string, outcome Outcome) {
	if p.history == nil || outcome.Skipped {
		return
	}
	err := p.history.Record(history.Entry{
		URL:      url,
		Subject:  subject,
		Path:     outcome.Path,
		Size:     outcome.Size,
		Duration: outcome.Duration,
	})
	if err != nil {
		log.Warnf("failed to record download history for %s: %v", url, err)
	}
}

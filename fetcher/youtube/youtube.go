// Package youtube is a native YouTube fetcher backend that needs no external binary. It trades yt-dlp's
// merging ability for a single progressive stream, so it is not registered at the highest priority.
package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/mjarret/subjectdl"
)

type source struct {
	videoID      string
	videoDetails *youtube.Video
	videoFormat  *youtube.Format
}

func (s *source) URL() string {
	return fmt.Sprintf("https://www.youtube.com/watch?v=%s", s.videoID)
}

func (s *source) String() string {
	if s.videoDetails != nil {
		return fmt.Sprintf("%s [%s]", s.videoDetails.Title, s.videoDetails.ID)
	}
	return s.URL()
}

func (s *source) Info() *subjectdl.MediaInfo {
	if s.videoDetails == nil {
		return nil
	}
	return &subjectdl.MediaInfo{
		ID:    s.videoDetails.ID,
		Title: s.videoDetails.Title,
	}
}

func (s *source) Recon(ctx context.Context) error {
	client := youtube.Client{}
	videoDetails, err := client.GetVideoContext(ctx, s.URL())
	if err != nil {
		return fmt.Errorf("failed to get video info: %w", err)
	}
	format, err := bestProgressiveFormat(videoDetails)
	if err != nil {
		return err
	}
	s.videoDetails = videoDetails
	s.videoFormat = format
	return nil
}

func (s *source) Fetch(d subjectdl.Download) error {
	if s.videoDetails == nil {
		return fmt.Errorf("recon has not run")
	}
	client := youtube.Client{}
	stream, size, err := client.GetStreamContext(d.Context(), s.videoDetails, s.videoFormat)
	if err != nil {
		return fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()
	d.AddExpectedBytes(size)
	return d.SaveStream(stream)
}

// bestProgressiveFormat picks the highest-bitrate format that carries both audio and video in one stream.
func bestProgressiveFormat(video *youtube.Video) (*youtube.Format, error) {
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, fmt.Errorf("no formats with audio channels")
	}
	best := &formats[0]
	for i := range formats {
		if formats[i].Bitrate > best.Bitrate {
			best = &formats[i]
		}
	}
	return best, nil
}

func Match(s string) (subjectdl.Source, error) {
	if parsedURL, err := url.Parse(s); err != nil {
		return nil, err
	} else if videoID, err := extractVideoID(parsedURL); err != nil {
		return nil, err
	} else {
		return &source{videoID: *videoID}, nil
	}
}

func New() subjectdl.Provider {
	return subjectdl.Provider{Name: "youtube", Match: Match}
}

// Extract video ID from YouTube URL.
//
// Allowed URL formats:
//		http(s?)://(www|m).youtube.com/(watch|details)?v={VIDEO_ID}
//		http(s?)://(www|m).youtube.com/v/{VIDEO_ID}
//		http(s?)://youtu.be/{VIDEO_ID}
func extractVideoID(url *url.URL) (*string, error) {
	var id string
	switch url.Hostname() {
	case "www.youtube.com":
		fallthrough
	case "m.youtube.com":
		if strings.HasPrefix(url.Path, "/v/") {
			id = strings.SplitN(url.Path, "/", 3)[2]
		} else if url.Path == "/watch" || url.Path == "/details" {
			if url.Query().Has("v") {
				id = url.Query().Get("v")
			} else {
				return nil, fmt.Errorf("missing ?v= query parameter")
			}
		}
	case "youtu.be":
		id = strings.Trim(url.Path, "/")
	default:
		return nil, fmt.Errorf("unrecognised hostname")
	}
	if id == "" {
		return nil, fmt.Errorf("could not extract video ID")
	}
	return &id, nil
}

func init() {
	subjectdl.DefaultProviderRegistry.MustAdd(New())
}

// Package direct handles URLs that point straight at a media file, streaming the response body to the target.
package direct

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/mjarret/subjectdl"
	"github.com/mjarret/subjectdl/util"
)

type Config struct {
	Protocols  []string
	Extensions []string
}

func NewConfig() Config {
	return Config{
		Protocols: []string{
			"http",
			"https",
		},
		Extensions: []string{
			".flv",
			".m4v",
			".mkv",
			".mp4",
			".webm",
		},
	}
}

func (c *Config) Match(s string) (subjectdl.Source, error) {
	// Expect string to be a URL
	parsedURL, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !contains(c.Protocols, parsedURL.Scheme) {
		return nil, fmt.Errorf("unknown URL scheme %v", parsedURL.Scheme)
	}
	// Attempt to extract filename and extension
	filename, err := util.FilenameFromURL(parsedURL)
	if err != nil {
		return nil, err
	}
	extension := path.Ext(filename)
	if extension == "" {
		return nil, fmt.Errorf("no file extension found")
	}
	if !contains(c.Extensions, extension) {
		return nil, fmt.Errorf("unknown file extension %v", extension)
	}
	res := source{
		url:      s,
		filename: filename,
	}
	return &res, nil
}

func (c Config) Provider() subjectdl.Provider {
	return subjectdl.Provider{
		Name:  "direct",
		Match: c.Match,
	}
}

type source struct {
	url      string
	filename string
	info     *subjectdl.MediaInfo
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

// Recon derives the metadata from the URL itself; there is nothing to ask the remote end for.
func (s *source) Recon(ctx context.Context) error {
	title := strings.TrimSuffix(s.filename, path.Ext(s.filename))
	s.info = &subjectdl.MediaInfo{ID: s.filename, Title: title}
	return nil
}

func (s *source) Fetch(d subjectdl.Download) error {
	return d.SaveURL(s.url)
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func init() {
	subjectdl.DefaultProviderRegistry.MustAdd(
		NewConfig().Provider().WithPriority(subjectdl.PriorityLowest),
	)
}

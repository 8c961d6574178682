package util

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNoFilename = errors.New("cannot extract valid filename")
)

// PlaceholderTitle is used when a video's metadata carries no usable title.
const PlaceholderTitle = "unknown_title"

// SanitizeFilename makes an arbitrary video title safe to use as a single path element. Path separators and other
// characters that are special on common filesystems are replaced with underscores, control characters are dropped,
// and runs of whitespace collapse to one space.
func SanitizeFilename(name string) string {
	builder := strings.Builder{}
	space := false
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			continue
		case strings.ContainsRune(`/\:*?"<>|`, r):
			if space && builder.Len() > 0 {
				builder.WriteRune(' ')
			}
			space = false
			builder.WriteRune('_')
		case r == ' ' || r == '\t':
			space = true
		default:
			if space && builder.Len() > 0 {
				builder.WriteRune(' ')
			}
			space = false
			builder.WriteRune(r)
		}
	}
	out := strings.Trim(builder.String(), " .")
	return out
}

func FilenameFromURL(url *url.URL) (string, error) {
	if url == nil {
		return "", ErrNoFilename
	}
	path := strings.Trim(url.Path, "/")
	if path == "" {
		return "", ErrNoFilename
	}
	pathElements := strings.Split(path, "/")
	filename := pathElements[len(pathElements)-1]
	if filename == "" {
		return "", ErrNoFilename
	}
	// Don't allow "filenames" that are just ".", "..", etc.
	if strings.ReplaceAll(filename, ".", "") == "" {
		return "", ErrNoFilename
	}
	return filename, nil
}

func FilenameFromURLString(s string) (string, error) {
	if parsedURL, err := url.Parse(s); err != nil {
		return "", err
	} else {
		return FilenameFromURL(parsedURL)
	}
}

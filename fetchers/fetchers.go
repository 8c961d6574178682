// Package fetchers registers every built-in fetcher backend with the default provider registry.
package fetchers

import (
	_ "github.com/mjarret/subjectdl/fetcher/direct"
	_ "github.com/mjarret/subjectdl/fetcher/ytdlp"
	_ "github.com/mjarret/subjectdl/fetcher/youtube"
)

package util

import (
	"testing"

	assert_ "github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert := assert_.New(t)

	for input, expected := range map[string]string{
		"Plain Title":                    "Plain Title",
		"Algebra: Lecture 1/12":          "Algebra_ Lecture 1_12",
		"a\tb":                           "a b",
		"lots   of    spaces":            "lots of spaces",
		"trailing dots...":               "trailing dots",
		"  padded  ":                     "padded",
		"..":                             "",
		"C:\\Windows\\system32":          "C__Windows_system32",
		"what? \"why\" <how> |when|":     "what_ _why_ _how_ _when_",
		"control\x00\x1fchars":           "controlchars",
	} {
		assert.Equal(expected, SanitizeFilename(input), "input: %q", input)
	}
}

func TestFilenameFromURLString(t *testing.T) {
	assert := assert_.New(t)

	filename, err := FilenameFromURLString("https://example.com/media/lecture-01.mp4")
	assert.NoError(err)
	assert.Equal("lecture-01.mp4", filename)

	for _, input := range []string{
		"https://example.com/",
		"https://example.com",
		"https://example.com/..",
	} {
		_, err := FilenameFromURLString(input)
		assert.ErrorIs(err, ErrNoFilename, "input: %q", input)
	}

	_, err = FilenameFromURL(nil)
	assert.ErrorIs(err, ErrNoFilename)
}

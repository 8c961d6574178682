// Package subjects loads the subject→URLs mapping that drives a batch run.
package subjects

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrMalformed = errors.New("malformed subjects file")
)

// A Subject is a named group of video URLs that get downloaded into one folder.
type Subject struct {
	Name string
	URLs []string
}

// A Mapping is the full contents of a subjects file, in file order. It is read-only after Load.
type Mapping []Subject

// Load reads a subjects file: a JSON object mapping subject names to arrays of URL strings. Subjects are kept in
// the order they appear in the file, which is why this decodes tokens instead of unmarshalling into a map.
func Load(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mapping, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return mapping, nil
}

func decode(r io.Reader) (Mapping, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected top-level object, got %v", tok)
	}

	var mapping Mapping
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected subject name, got %v", tok)
		}
		var urls []string
		if err := dec.Decode(&urls); err != nil {
			return nil, fmt.Errorf("subject %q: %v", name, err)
		}
		mapping = append(mapping, Subject{Name: name, URLs: urls})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	// Anything after the closing brace is junk.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing content after subjects object")
	}
	return mapping, nil
}

// URLCount is the total number of URLs across all subjects.
func (m Mapping) URLCount() int {
	n := 0
	for _, s := range m {
		n += len(s.URLs)
	}
	return n
}

package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// StdinPath is the path that makes ParseFile read from standard input.
const StdinPath = "-"

// ParseFile reads and parses the template at path. A path of "-" reads standard input.
func ParseFile(path string) (*Template, error) {
	return ParseFileFrom(path, os.Stdin)
}

// ParseFileFrom is ParseFile with an explicit reader standing in for standard input.
func ParseFileFrom(path string, stdin io.Reader) (*Template, error) {
	if path == StdinPath {
		return Parse(stdin, "<stdin>")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse decodes a template from r. source names the input in error messages.
//
// Parsing is structural only: unknown keys, unknown actions or entities and malformed values
// fail here, while semantic rules are left to Validate.
func Parse(r io.Reader, source string) (*Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", source, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: empty template", source)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var t Template
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty template", source)
		}

		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if t.Operations == nil {
		return nil, fmt.Errorf("%s: missing required key \"operations\"", source)
	}

	return &t, nil
}

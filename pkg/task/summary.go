package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Summary is free text given either as a single string or as lines.
// It serializes back in the form it was given.
type Summary struct {
	lines []string
	list  bool
}

// Text returns a single-string summary.
func Text(s string) Summary {
	return Summary{lines: []string{s}}
}

// Lines returns a summary made of ordered lines.
func Lines(lines ...string) Summary {
	return Summary{lines: append([]string(nil), lines...), list: true}
}

// IsZero reports whether the summary was never set.
func (s Summary) IsZero() bool {
	return len(s.lines) == 0 && !s.list
}

// IsList reports whether the summary was given as lines.
func (s Summary) IsList() bool {
	return s.list
}

// Lines returns the summary lines. A text summary is a single line.
func (s Summary) Lines() []string {
	return append([]string(nil), s.lines...)
}

// String joins the lines with newlines.
func (s Summary) String() string {
	return strings.Join(s.lines, "\n")
}

// MarshalJSON writes a string or an array of strings.
func (s Summary) MarshalJSON() ([]byte, error) {
	if s.list {
		if s.lines == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(s.lines)
	}
	if len(s.lines) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(s.lines[0])
}

// UnmarshalJSON accepts a string, an array of strings, or null.
func (s *Summary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = Summary{}
		return nil
	case len(data) > 0 && data[0] == '[':
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("parse summary lines: %w", err)
		}
		*s = Lines(lines...)
		return nil
	default:
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("parse summary: %w", err)
		}
		*s = Text(text)
		return nil
	}
}

// MarshalYAML mirrors MarshalJSON for YAML exports.
func (s Summary) MarshalYAML() (any, error) {
	if s.list {
		return s.Lines(), nil
	}
	if len(s.lines) == 0 {
		return nil, nil
	}
	return s.lines[0], nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (s *Summary) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var lines []string
		if err := node.Decode(&lines); err != nil {
			return fmt.Errorf("parse summary lines: %w", err)
		}
		*s = Lines(lines...)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = Summary{}
			return nil
		}
		*s = Text(node.Value)
	default:
		return fmt.Errorf("parse summary: unexpected yaml node kind %d", node.Kind)
	}
	return nil
}

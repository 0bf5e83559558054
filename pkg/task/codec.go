package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// taskFields has Task's fields and tags without its JSON methods.
type taskFields Task

// keys the struct tags already decode, plus the parent reference of the
// original record shape, which is never persisted.
var knownKeys = map[string]bool{
	"name": true, "scope": true, "summary": true, "notes": true,
	"meta": true, "concerns": true, "assumptions": true, "questions": true,
	"weight": true, "ticketed": true, "subTasks": true, "parentName": true,
	"parentReference": true,
}

// UnmarshalJSON decodes the known fields and keeps any other keys so
// they survive the next write.
func (t *Task) UnmarshalJSON(data []byte) error {
	var fields taskFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Task(fields)
	t.extra = nil
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if t.extra == nil {
			t.extra = make(map[string]json.RawMessage)
		}
		t.extra[k] = v
	}
	return nil
}

// MarshalJSON writes the known fields in declaration order, then unknown
// keys sorted by name, then parentName.
func (t Task) MarshalJSON() ([]byte, error) {
	fields := taskFields(t)
	fields.ParentName = ""
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if len(t.extra) == 0 && t.ParentName == "" {
		return data, nil
	}

	var b bytes.Buffer
	b.Write(data[:len(data)-1])
	for _, k := range slices.Sorted(maps.Keys(t.extra)) {
		if err := writeMember(&b, k, t.extra[k]); err != nil {
			return nil, err
		}
	}
	if t.ParentName != "" {
		if err := writeMember(&b, "parentName", t.ParentName); err != nil {
			return nil, err
		}
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func writeMember(b *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	b.WriteByte(',')
	b.Write(k)
	b.WriteByte(':')
	b.Write(v)
	return nil
}

// ExtraKeys returns the names of unknown keys carried from a file, sorted.
func (t *Task) ExtraKeys() []string {
	return slices.Sorted(maps.Keys(t.extra))
}

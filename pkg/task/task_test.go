package task

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		task Task
		ref  Ref
		want bool
	}{
		{"name and scope", Task{Name: "root", Scope: "core"}, Ref{Name: "root", Scope: "core"}, true},
		{"scope differs", Task{Name: "root", Scope: "core"}, Ref{Name: "root", Scope: "infra"}, false},
		{"name differs", Task{Name: "root", Scope: "core"}, Ref{Name: "other", Scope: "core"}, false},
		{"both unscoped", Task{Name: "root"}, Ref{Name: "root"}, true},
		{"unscoped vs sentinel", Task{Name: "root"}, Ref{Name: "root", Scope: SentinelScope}, false},
		{"sentinel vs unscoped", Task{Name: "root", Scope: SentinelScope}, Ref{Name: "root"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Matches(tt.ref); got != tt.want {
				t.Errorf("Matches(%+v): got %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolvedScope(t *testing.T) {
	if got := (&Task{Name: "a"}).ResolvedScope(); got != SentinelScope {
		t.Errorf("ResolvedScope: got %q, want %q", got, SentinelScope)
	}
	if got := (&Task{Name: "a", Scope: "core"}).ResolvedScope(); got != "core" {
		t.Errorf("ResolvedScope: got %q, want core", got)
	}
}

func TestCount(t *testing.T) {
	root := &Task{Name: "root"}
	child := &Task{Name: "child"}
	child.AddSubTask(&Task{Name: "grandchild"})
	root.AddSubTask(child)
	root.AddSubTask(&Task{Name: "sibling"})

	if got := root.Count(); got != 4 {
		t.Errorf("Count: got %d, want 4", got)
	}
}

func TestMarshalFieldOrder(t *testing.T) {
	rec := &Task{
		Name:       "child",
		Scope:      "core",
		Summary:    Text("do the thing"),
		Notes:      []string{"n1"},
		Meta:       Metadata{"owner": "infra"},
		Weight:     Float(3),
		Ticketed:   Bool(true),
		ParentName: "root",
		Parent:     &Ref{Name: "root", Scope: "core"},
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	got := string(data)

	want := `{"name":"child","scope":"core","summary":"do the thing","notes":["n1"],"meta":{"owner":"infra"},"weight":3,"ticketed":true,"parentName":"root"}`
	if got != want {
		t.Errorf("Marshal:\n got %s\nwant %s", got, want)
	}
	if strings.Contains(got, "parent\"") || strings.Contains(got, "parentReference") {
		t.Errorf("parent reference leaked into output: %s", got)
	}
}

func TestMarshalOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Task{Name: "bare"})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"name":"bare"}` {
		t.Errorf("Marshal: got %s", data)
	}
}

func TestSummaryJSON(t *testing.T) {
	tests := []struct {
		name    string
		summary Summary
		want    string
	}{
		{"text", Text("one line"), `"one line"`},
		{"lines", Lines("a", "b"), `["a","b"]`},
		{"empty lines", Lines(), `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.summary)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(data) != tt.want {
				t.Fatalf("Marshal: got %s, want %s", data, tt.want)
			}

			var back Summary
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if back.IsList() != tt.summary.IsList() {
				t.Errorf("IsList: got %v, want %v", back.IsList(), tt.summary.IsList())
			}
			if !reflect.DeepEqual(back.Lines(), tt.summary.Lines()) {
				t.Errorf("Lines: got %v, want %v", back.Lines(), tt.summary.Lines())
			}
		})
	}
}

func TestSummaryRejectsObject(t *testing.T) {
	var s Summary
	if err := json.Unmarshal([]byte(`{"a":1}`), &s); err == nil {
		t.Error("expected error for object summary, got nil")
	}
}

func TestUnmarshalKeepsUnknownFields(t *testing.T) {
	var rec Task
	input := `{"name":"x","parentReference":{"name":"p"},"owner":"ops","extra":1,"subTasks":[{"name":"y","tag":[1,2],"parentName":"x"}]}`
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if rec.Parent != nil {
		t.Errorf("Parent: got %+v, want nil", rec.Parent)
	}
	if len(rec.SubTasks) != 1 || rec.SubTasks[0].ParentName != "x" {
		t.Fatalf("SubTasks: got %+v", rec.SubTasks)
	}
	if got := rec.ExtraKeys(); !reflect.DeepEqual(got, []string{"extra", "owner"}) {
		t.Errorf("ExtraKeys: got %v", got)
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"name":"x","subTasks":[{"name":"y","tag":[1,2],"parentName":"x"}],"extra":1,"owner":"ops"}`
	if string(data) != want {
		t.Errorf("Marshal:\n got %s\nwant %s", data, want)
	}
}

func TestUnmarshalResetsExtra(t *testing.T) {
	var rec Task
	if err := json.Unmarshal([]byte(`{"name":"a","old":true}`), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"name":"b"}`), &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if keys := rec.ExtraKeys(); len(keys) != 0 {
		t.Errorf("stale extra keys: %v", keys)
	}
}

func TestUnmarshalRejectsWrongType(t *testing.T) {
	var rec Task
	if err := json.Unmarshal([]byte(`{"name":"a","weight":"heavy"}`), &rec); err == nil {
		t.Error("expected error for string weight, got nil")
	}
}

func TestYAML(t *testing.T) {
	rec := &Task{
		Name:    "root",
		Scope:   "core",
		Summary: Lines("first", "second"),
		SubTasks: []*Task{
			{Name: "child", Scope: "core", Summary: Text("leaf"), ParentName: "root"},
		},
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{"name: root", "- first", "summary: leaf", "parentName: root"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "weight") {
		t.Errorf("yaml output should omit unset weight:\n%s", out)
	}

	var back Task
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal failed: %v", err)
	}
	if !back.Summary.IsList() || back.Summary.String() != "first\nsecond" {
		t.Errorf("Summary: got %q (list=%v)", back.Summary.String(), back.Summary.IsList())
	}
	if back.SubTasks[0].Summary.String() != "leaf" {
		t.Errorf("child Summary: got %q", back.SubTasks[0].Summary.String())
	}
}

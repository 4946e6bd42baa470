package match

import (
	"reflect"
	"testing"

	"github.com/nbkit/jkexec/internal/jupyter"
)

func record(id, path, name string) jupyter.Record {
	session := map[string]any{"path": path, "name": name}
	return jupyter.Record{KernelID: id, ServerBaseURL: "http://localhost:8888", Session: session}
}

func TestNormalizeSessionValue_JvscSuffix(t *testing.T) {
	got := normalizeSessionValue("notebook-jvsc-abc123.ipynb")
	if got != "notebook.ipynb" {
		t.Fatalf("got %q, want notebook.ipynb", got)
	}
}

func TestNormalizeSessionValue_UUIDSuffix(t *testing.T) {
	got := normalizeSessionValue("demo-1A2B3C4D-5e6f-7a8b-9c0d-1e2f3a4b5c6d.ipynb")
	if got != "demo.ipynb" {
		t.Fatalf("got %q, want demo.ipynb", got)
	}
}

func TestNormalizeSessionValue_SuffixOnlyBeforeExtension(t *testing.T) {
	// The suffix must sit immediately before .ipynb to be stripped.
	in := "notebook-jvsc-abc123.txt"
	if got := normalizeSessionValue(in); got != in {
		t.Fatalf("got %q, want unchanged", got)
	}
}

func TestNormalizeSessionValue_Backslashes(t *testing.T) {
	got := normalizeSessionValue(`dir\sub\demo.ipynb`)
	if got != "dir/sub/demo.ipynb" {
		t.Fatalf("got %q", got)
	}
}

func TestSessionStrings_CandidateSet(t *testing.T) {
	session := map[string]any{"path": "work/notebook-jvsc-abc.ipynb", "name": "notebook-jvsc-abc.ipynb"}
	values := sessionStrings(session)
	want := map[string]bool{
		"work/notebook-jvsc-abc.ipynb": true,
		"notebook-jvsc-abc.ipynb":      true,
		"work/notebook.ipynb":          true,
		"notebook.ipynb":               true,
	}
	if len(values) != len(want) {
		t.Fatalf("got %d candidates %v, want %d", len(values), values, len(want))
	}
	for _, v := range values {
		if !want[v] {
			t.Fatalf("unexpected candidate %q", v)
		}
	}
}

func TestSessionStrings_SkipsNonStrings(t *testing.T) {
	session := map[string]any{"path": 42, "name": ""}
	if values := sessionStrings(session); len(values) != 0 {
		t.Fatalf("got %v, want none", values)
	}
}

func TestNotebookLikeMatch(t *testing.T) {
	cases := []struct {
		reference string
		candidate string
		want      bool
	}{
		{"report.ipynb", "report.ipynb", true},
		{"report.ipynb", "report-1.ipynb", true},
		{"report.ipynb", "reportx.ipynb", false},
		{"report.ipynb", "report.txt", false},
		{"report", "report.ipynb", true},
		{"report", "report.txt", true},
		{"report", "report-2024.ipynb", true},
		{"report.IPYNB", "report.ipynb", true},
		{".ipynb", "demo.ipynb", false},
		{"", "demo.ipynb", false},
		{"nested/report.ipynb", "work/report.ipynb", true},
	}
	for _, tc := range cases {
		if got := notebookLikeMatch(tc.reference, tc.candidate); got != tc.want {
			t.Errorf("notebookLikeMatch(%q, %q) = %v, want %v", tc.reference, tc.candidate, got, tc.want)
		}
	}
}

func TestRecords_Substring(t *testing.T) {
	records := []jupyter.Record{
		record("a", "work/demo.ipynb", "demo.ipynb"),
		record("b", "other.ipynb", "other.ipynb"),
	}
	matched, kind, reference, err := Records(records, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if kind != KindSubstring || reference != "demo" {
		t.Fatalf("kind=%v reference=%q", kind, reference)
	}
	if len(matched) != 1 || matched[0].KernelID != "a" {
		t.Fatalf("matched %v", matched)
	}
}

func TestRecords_Regex(t *testing.T) {
	records := []jupyter.Record{
		record("a", "exp-01.ipynb", ""),
		record("b", "demo-exp.ipynb", ""),
	}
	matched, kind, reference, err := Records(records, "re:^exp-")
	if err != nil {
		t.Fatal(err)
	}
	if kind != KindRegex || reference != "^exp-" {
		t.Fatalf("kind=%v reference=%q", kind, reference)
	}
	if len(matched) != 1 || matched[0].KernelID != "a" {
		t.Fatalf("matched %v", matched)
	}
}

func TestRecords_InvalidRegex(t *testing.T) {
	if _, _, _, err := Records(nil, "re:("); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestRecords_PureAndOrderPreserving(t *testing.T) {
	records := []jupyter.Record{
		record("b", "x.ipynb", ""),
		record("a", "x.ipynb", ""),
	}
	first, _, _, err := Records(records, "x")
	if err != nil {
		t.Fatal(err)
	}
	second, _, _, err := Records(records, "x")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ: %v vs %v", first, second)
	}
	if first[0].KernelID != "b" || first[1].KernelID != "a" {
		t.Fatalf("order not preserved: %v", first)
	}
}

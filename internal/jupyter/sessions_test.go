package jupyter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionsHandler(t *testing.T, wantToken, body string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("token"); got != wantToken {
			t.Errorf("token = %q, want %q", got, wantToken)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestCollectRecords_FlattensAcrossServers(t *testing.T) {
	first := httptest.NewServer(sessionsHandler(t, "s3cret", `[
		{"kernel": {"id": "k1"}, "path": "a.ipynb", "name": "a.ipynb"},
		{"kernel": {"id": "k2"}, "path": "b.ipynb", "name": "b.ipynb"}
	]`))
	defer first.Close()
	second := httptest.NewServer(sessionsHandler(t, "", `[
		{"kernel": {"id": "k3"}, "path": "c.ipynb", "name": "c.ipynb"}
	]`))
	defer second.Close()

	servers := []Server{
		{BaseURL: first.URL, Token: "s3cret"},
		{BaseURL: second.URL},
	}
	records, errs := CollectRecords(context.Background(), first.Client(), servers, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.KernelID)
	}
	if strings.Join(ids, ",") != "k1,k2,k3" {
		t.Fatalf("ids = %v, want k1,k2,k3", ids)
	}
	if records[0].ServerBaseURL != first.URL || records[0].ServerToken != "s3cret" {
		t.Fatalf("record did not keep server identity: %+v", records[0])
	}
}

func TestCollectRecords_IsolatesFailingServer(t *testing.T) {
	healthy := httptest.NewServer(sessionsHandler(t, "", `[{"kernel": {"id": "k1"}, "path": "a.ipynb"}]`))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()

	servers := []Server{
		{BaseURL: broken.URL},
		{BaseURL: healthy.URL},
	}
	records, errs := CollectRecords(context.Background(), healthy.Client(), servers, nil)
	if len(records) != 1 || records[0].KernelID != "k1" {
		t.Fatalf("records = %v", records)
	}
	if len(errs) != 1 || !strings.HasPrefix(errs[0], broken.URL+": ") {
		t.Fatalf("errs = %v, want one entry for %s", errs, broken.URL)
	}
}

func TestCollectRecords_NonListBody(t *testing.T) {
	srv := httptest.NewServer(sessionsHandler(t, "", `{"message": "not a list"}`))
	defer srv.Close()

	records, errs := CollectRecords(context.Background(), srv.Client(), []Server{{BaseURL: srv.URL}}, nil)
	if len(records) != 0 {
		t.Fatalf("records = %v, want none", records)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "response shape") {
		t.Fatalf("errs = %v", errs)
	}
}

func TestCollectRecords_DropsMalformedEntries(t *testing.T) {
	srv := httptest.NewServer(sessionsHandler(t, "", `[
		"not an object",
		{"kernel": "not an object"},
		{"kernel": {"id": ""}},
		{"kernel": {"id": 7}},
		{"path": "orphan.ipynb"},
		{"kernel": {"id": "k9"}, "path": "keep.ipynb"}
	]`))
	defer srv.Close()

	records, errs := CollectRecords(context.Background(), srv.Client(), []Server{{BaseURL: srv.URL}}, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 1 || records[0].KernelID != "k9" {
		t.Fatalf("records = %v, want just k9", records)
	}
}

func TestRecordString(t *testing.T) {
	r := Record{
		KernelID:      "k1",
		ServerBaseURL: "http://localhost:8888",
		Session:       map[string]any{"path": "demo.ipynb", "name": "demo.ipynb"},
	}
	want := "k1 | http://localhost:8888 | path=demo.ipynb | name=demo.ipynb"
	if got := r.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWithToken(t *testing.T) {
	cases := []struct {
		url, token, want string
	}{
		{"http://h/api/sessions", "", "http://h/api/sessions"},
		{"http://h/api/sessions", "abc", "http://h/api/sessions?token=abc"},
		{"http://h/api/sessions?x=1", "abc", "http://h/api/sessions?x=1&token=abc"},
		{"http://h/api/sessions", "a b", "http://h/api/sessions?token=a+b"},
	}
	for _, tc := range cases {
		if got := WithToken(tc.url, tc.token); got != tc.want {
			t.Errorf("WithToken(%q, %q) = %q, want %q", tc.url, tc.token, got, tc.want)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	if got := NormalizeBaseURL("http://localhost:8888//"); got != "http://localhost:8888" {
		t.Fatalf("got %q", got)
	}
}

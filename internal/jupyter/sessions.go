package jupyter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

// Record is one resolvable session: the kernel id, the server it lives on,
// and the raw session object. Only the session's "path" and "name" fields
// are ever interpreted; everything else is carried opaquely.
type Record struct {
	KernelID      string
	ServerBaseURL string
	ServerToken   string
	Session       map[string]any
}

// Path returns the session's "path" field, or "" when absent.
func (r Record) Path() string {
	return r.sessionString("path")
}

// Name returns the session's "name" field, or "" when absent.
func (r Record) Name() string {
	return r.sessionString("name")
}

func (r Record) sessionString(key string) string {
	v, _ := r.Session[key].(string)
	return v
}

// String renders the record the way resolution diagnostics list candidates.
func (r Record) String() string {
	return fmt.Sprintf("%s | %s | path=%s | name=%s", r.KernelID, r.ServerBaseURL, r.Path(), r.Name())
}

// CollectRecords queries every server's /api/sessions endpoint and flattens
// the results. Servers are queried concurrently; records and errors keep the
// input server order, and within a server the response order. A failing
// server contributes one "<base_url>: <cause>" error entry and never aborts
// the rest.
func CollectRecords(ctx context.Context, client *http.Client, servers []Server, logger *slog.Logger) ([]Record, []string) {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}

	type result struct {
		records []Record
		err     error
	}
	results := make([]result, len(servers))

	var wg sync.WaitGroup
	for i, srv := range servers {
		wg.Add(1)
		go func(i int, srv Server) {
			defer wg.Done()
			sessions, err := querySessions(ctx, client, srv)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			recs := make([]Record, 0, len(sessions))
			for _, session := range sessions {
				kernel, ok := session["kernel"].(map[string]any)
				if !ok {
					continue
				}
				kernelID, ok := kernel["id"].(string)
				if !ok || kernelID == "" {
					continue
				}
				recs = append(recs, Record{
					KernelID:      kernelID,
					ServerBaseURL: srv.BaseURL,
					ServerToken:   srv.Token,
					Session:       session,
				})
			}
			results[i] = result{records: recs}
		}(i, srv)
	}
	wg.Wait()

	var records []Record
	var errs []string
	for i, res := range results {
		if res.err != nil {
			logger.Debug("session query failed", "server", servers[i].BaseURL, "error", res.err)
			errs = append(errs, fmt.Sprintf("%s: %v", servers[i].BaseURL, res.err))
			continue
		}
		records = append(records, res.records...)
	}
	return records, errs
}

// querySessions fetches one server's session list. The body must be a JSON
// array; entries that are not objects are dropped.
func querySessions(ctx context.Context, client *http.Client, srv Server) ([]map[string]any, error) {
	url := WithToken(srv.BaseURL+"/api/sessions", srv.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var entries []any
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("unexpected /api/sessions response shape")
	}
	sessions := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		if session, ok := entry.(map[string]any); ok {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// Package discovery locates running Jupyter servers by shelling out to
// `jupyter server list --jsonlist`. Discovery is best-effort: a missing
// binary, a failing command, or unparseable output all yield zero servers
// rather than an error, and the caller decides whether that is fatal.
package discovery

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"regexp"

	"github.com/nbkit/jkexec/internal/jupyter"
)

// Some jupyter builds print warnings before the JSON array; grab a trailing
// array of objects when the whole output does not parse.
var trailingArray = regexp.MustCompile(`(?s)(\[\s*\{.*\}\s*\])\s*$`)

// Servers runs the server-list command and returns the discovered servers
// in listing order. Entries without a token fall back to fallbackToken.
func Servers(ctx context.Context, fallbackToken string, logger *slog.Logger) []jupyter.Server {
	if logger == nil {
		logger = slog.Default()
	}
	cmd := exec.CommandContext(ctx, "jupyter", "server", "list", "--jsonlist")
	out, err := cmd.Output()
	if err != nil {
		logger.Debug("jupyter server list failed", "error", err)
		return nil
	}
	return parseServerList(string(out), fallbackToken)
}

func parseServerList(stdout, fallbackToken string) []jupyter.Server {
	entries := parseEntries(stdout)
	servers := make([]jupyter.Server, 0, len(entries))
	for _, entry := range entries {
		url, _ := entry["url"].(string)
		if url == "" {
			continue
		}
		token, _ := entry["token"].(string)
		if token == "" {
			token = fallbackToken
		}
		rootDir, _ := entry["root_dir"].(string)
		servers = append(servers, jupyter.Server{
			BaseURL: jupyter.NormalizeBaseURL(url),
			Token:   token,
			RootDir: rootDir,
		})
	}
	return servers
}

func parseEntries(stdout string) []map[string]any {
	payload := []byte(stdout)
	var raw []any
	if err := json.Unmarshal(payload, &raw); err != nil {
		m := trailingArray.FindSubmatch(payload)
		if m == nil {
			return nil
		}
		if err := json.Unmarshal(m[1], &raw); err != nil {
			return nil
		}
	}
	entries := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if entry, ok := item.(map[string]any); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

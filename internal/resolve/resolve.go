// Package resolve turns a kernel id or match reference into exactly one
// running session, or a diagnostic error that tells the user what was
// searched and what was found.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nbkit/jkexec/internal/jupyter"
	"github.com/nbkit/jkexec/internal/match"
)

// Target is a fully resolved kernel: the server that owns it and its id.
type Target struct {
	BaseURL  string
	Token    string
	KernelID string
}

// NoSessionsError reports that the searched servers exposed no sessions at
// all. It carries the search context so the caller can see which servers
// were tried and which of them failed.
type NoSessionsError struct {
	Servers []jupyter.Server
	Errors  []string
}

func (e *NoSessionsError) Error() string {
	var b strings.Builder
	b.WriteString("unable to find any running sessions on the selected servers")
	writeSearchContext(&b, e.Servers, e.Errors)
	return b.String()
}

// NoMatchError reports that sessions exist but none matched the reference.
type NoMatchError struct {
	// Kind is "kernel id", "substring", or "regex".
	Kind      string
	Reference string
	Servers   []jupyter.Server
	Errors    []string
}

func (e *NoMatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no sessions matched %s: %s", e.Kind, e.Reference)
	writeSearchContext(&b, e.Servers, e.Errors)
	return b.String()
}

// AmbiguousError reports more than one matching session, listing every
// candidate so the user can refine the reference or switch to a kernel id.
type AmbiguousError struct {
	Matches []jupyter.Record
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	b.WriteString("multiple sessions matched; specify --kernel-id or refine --kernel-match:")
	for _, record := range e.Matches {
		b.WriteString("\n  ")
		b.WriteString(record.String())
	}
	return b.String()
}

func writeSearchContext(b *strings.Builder, servers []jupyter.Server, errs []string) {
	b.WriteString("\nsearched servers:")
	for _, srv := range servers {
		b.WriteString("\n  - ")
		b.WriteString(srv.BaseURL)
	}
	if len(errs) > 0 {
		b.WriteString("\nsession query errors:")
		for _, msg := range errs {
			b.WriteString("\n  - ")
			b.WriteString(msg)
		}
	}
}

// Resolve builds the session directory across servers and narrows it to
// exactly one record. Exactly one of kernelID or kernelMatch must be
// non-empty; the caller enforces that before any network activity. An
// invalid regex reference fails before the directory is consulted.
func Resolve(ctx context.Context, client *http.Client, servers []jupyter.Server, kernelID, kernelMatch string, logger *slog.Logger) (Target, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Validate the reference up front so a bad regex never triggers a query.
	if kernelMatch != "" {
		if _, _, _, err := match.Records(nil, kernelMatch); err != nil {
			return Target{}, err
		}
	}

	records, errs := jupyter.CollectRecords(ctx, client, servers, logger)
	if len(records) == 0 {
		return Target{}, &NoSessionsError{Servers: servers, Errors: errs}
	}

	var matches []jupyter.Record
	var kind, reference string
	if kernelID != "" {
		kind, reference = "kernel id", kernelID
		for _, record := range records {
			if record.KernelID == kernelID {
				matches = append(matches, record)
			}
		}
	} else {
		matched, matchKind, pattern, err := match.Records(records, kernelMatch)
		if err != nil {
			return Target{}, err
		}
		matches, kind, reference = matched, matchKind.String(), pattern
	}

	switch len(matches) {
	case 0:
		return Target{}, &NoMatchError{Kind: kind, Reference: reference, Servers: servers, Errors: errs}
	case 1:
		chosen := matches[0]
		logger.Debug("resolved kernel", "kernel_id", chosen.KernelID, "server", chosen.ServerBaseURL)
		return Target{
			BaseURL:  chosen.ServerBaseURL,
			Token:    chosen.ServerToken,
			KernelID: chosen.KernelID,
		}, nil
	default:
		return Target{}, &AmbiguousError{Matches: matches}
	}
}

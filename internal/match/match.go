// Package match filters session records by a user-supplied reference:
// an exact substring, a notebook-style filename comparison, or a regular
// expression marked with the "re:" prefix.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nbkit/jkexec/internal/jupyter"
)

// RegexPrefix marks a reference that should be compiled as a regular
// expression instead of matched as a substring.
const RegexPrefix = "re:"

// Kind reports how a reference was interpreted.
type Kind int

const (
	KindSubstring Kind = iota
	KindRegex
)

func (k Kind) String() string {
	if k == KindRegex {
		return "regex"
	}
	return "substring"
}

// Editors append disambiguating suffixes to notebook session paths; both are
// stripped only when they sit immediately before the .ipynb extension.
var (
	jvscSuffix = regexp.MustCompile(`-jvsc-[^.]+(\.ipynb)$`)
	uuidSuffix = regexp.MustCompile(`(?i)-[0-9a-f]{8}(?:-[0-9a-f]{4}){3}-[0-9a-f]{12}(\.ipynb)$`)
)

// Records returns the subset of records whose session matches the reference,
// preserving input order. The returned Kind and pattern describe how the
// reference was interpreted, for use in diagnostics. An invalid regex is an
// error before any record is examined.
func Records(records []jupyter.Record, reference string) ([]jupyter.Record, Kind, string, error) {
	if pattern, ok := strings.CutPrefix(reference, RegexPrefix); ok {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, KindRegex, pattern, fmt.Errorf("invalid regex: %w", err)
		}
		var matched []jupyter.Record
		for _, record := range records {
			if matchesRegex(record.Session, re) {
				matched = append(matched, record)
			}
		}
		return matched, KindRegex, pattern, nil
	}

	var matched []jupyter.Record
	for _, record := range records {
		if matchesSubstring(record.Session, reference) {
			matched = append(matched, record)
		}
	}
	return matched, KindSubstring, reference, nil
}

func matchesSubstring(session map[string]any, reference string) bool {
	for _, value := range sessionStrings(session) {
		if strings.Contains(value, reference) {
			return true
		}
		if notebookLikeMatch(reference, value) {
			return true
		}
	}
	return false
}

func matchesRegex(session map[string]any, re *regexp.Regexp) bool {
	for _, value := range sessionStrings(session) {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// sessionStrings expands a session's "path" and "name" fields into every
// string a reference may be compared against: the raw value, its final path
// component, the normalized value, and the normalized value's final
// component. Duplicates are removed but first-seen order is kept so matching
// stays deterministic.
func sessionStrings(session map[string]any) []string {
	var values []string
	seen := make(map[string]struct{})
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	for _, key := range []string{"path", "name"} {
		raw, ok := session[key].(string)
		if !ok || raw == "" {
			continue
		}
		normalized := normalizeSessionValue(raw)
		add(raw)
		add(baseName(raw))
		add(normalized)
		add(baseName(normalized))
	}
	return values
}

// normalizeSessionValue rewrites backslashes to forward slashes and strips
// autogenerated -jvsc-* and trailing-UUID suffixes from notebook filenames.
func normalizeSessionValue(value string) string {
	normalized := strings.ReplaceAll(value, `\`, "/")
	normalized = jvscSuffix.ReplaceAllString(normalized, "$1")
	normalized = uuidSuffix.ReplaceAllString(normalized, "$1")
	return normalized
}

// notebookLikeMatch compares a reference and a candidate as notebook
// filenames: extensions must agree (case-insensitively) when the reference
// has one, and the candidate stem must equal the reference stem or extend it
// with a "-" separated suffix, which tolerates editor-appended
// disambiguators like report-1.ipynb.
func notebookLikeMatch(reference, candidate string) bool {
	refStem, refExt := splitExt(baseName(reference))
	candStem, candExt := splitExt(baseName(candidate))

	if refStem == "" {
		return false
	}
	if refExt != "" && !strings.EqualFold(refExt, candExt) {
		return false
	}
	return candStem == refStem || strings.HasPrefix(candStem, refStem+"-")
}

// baseName is the final slash-separated component. Unlike path.Base it
// returns "" for a trailing slash and leaves "." alone, matching how
// session paths are split.
func baseName(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// splitExt splits at the final dot. A leading dot is part of the stem, so
// dotfiles have no extension.
func splitExt(s string) (stem, ext string) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

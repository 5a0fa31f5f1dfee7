// Package emit serializes the filtered document and derives the summary
// counts reported to the caller.
package emit

import (
	"fmt"
	"strings"

	"specslice/internal/assemble"
	"specslice/internal/document"
	"specslice/internal/opkey"
)

// Summary aggregates what the run kept.
type Summary struct {
	PathsKept      int `json:"pathsKept"`
	OperationsKept int `json:"operationsKept"`
	ComponentsKept int `json:"componentsKept"`
	UnresolvedRefs int `json:"unresolvedRefs"`
}

// Summarize counts paths, operations, and component definitions in the
// output document.
func Summarize(doc *document.Document, unresolved []string) Summary {
	s := Summary{UnresolvedRefs: len(unresolved)}
	if paths, ok := doc.Get("paths"); ok && paths.IsMapping() {
		s.PathsKept = paths.Len()
		for _, p := range paths.Pairs {
			if !p.Value.IsMapping() {
				continue
			}
			for _, item := range p.Value.Pairs {
				if opkey.IsMethod(item.Key) {
					s.OperationsKept++
				}
			}
		}
	}
	if components, ok := doc.Get("components"); ok && components.IsMapping() {
		for _, typePair := range components.Pairs {
			s.ComponentsKept += typePair.Value.Len()
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("paths=%d operations=%d components=%d unresolved=%d",
		s.PathsKept, s.OperationsKept, s.ComponentsKept, s.UnresolvedRefs)
}

// EncodeJSON renders the structured form.
func EncodeJSON(doc *document.Document) ([]byte, error) {
	return doc.EncodeJSON()
}

// EncodeYAML renders the textual form. The two forms decode to the same
// tree.
func EncodeYAML(doc *document.Document) ([]byte, error) {
	return doc.EncodeYAML()
}

// FormatDecisions renders the decision log, one line per evaluated key.
func FormatDecisions(decisions []assemble.Decision) string {
	var b strings.Builder
	for _, d := range decisions {
		fmt.Fprintf(&b, "%s %s: %s\n", d.Verdict, d.Key, d.Reason)
	}
	return b.String()
}

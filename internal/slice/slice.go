// Package slice is the engine entry point: a pure function of four
// in-memory documents producing the filtered, closed partial document.
// It performs no I/O and holds no state between runs; identical inputs
// yield byte-identical output.
package slice

import (
	"errors"

	"specslice/internal/assemble"
	"specslice/internal/closure"
	"specslice/internal/detect"
	"specslice/internal/diffreport"
	"specslice/internal/document"
	"specslice/internal/emit"
	"specslice/internal/opkey"
)

// ErrNoAfterDocument is returned when the after document is missing; there
// is nothing to copy operations from.
var ErrNoAfterDocument = errors.New("after document is required")

// Result is everything a run produces.
type Result struct {
	// Doc is the partial document: filtered paths plus the reference
	// closure of their components.
	Doc *document.Document

	// Decisions is the per-key decision log, in output order.
	Decisions []assemble.Decision

	// Unresolved lists reference strings that did not resolve in the
	// after document's component tables.
	Unresolved []string

	Summary emit.Summary
}

// Run executes detection, assembly, and closure resolution.
//
// before may be nil (every after operation is then new); report may be nil
// or empty (phase 1 contributes nothing); base may be empty (nothing is
// legacy). after must be present.
func Run(before, after *document.Document, report *diffreport.Report, base opkey.Set) (*Result, error) {
	if after == nil {
		return nil, ErrNoAfterDocument
	}
	if report == nil {
		report = &diffreport.Report{}
	}
	if base == nil {
		base = opkey.NewSet()
	}

	detected := detect.Detect(before, after, report)
	out, decisions := assemble.Assemble(after, detected.Affected, base, detected.Removed)
	unresolved := closure.Resolve(out, after)

	return &Result{
		Doc:        out,
		Decisions:  decisions,
		Unresolved: unresolved,
		Summary:    emit.Summarize(out, unresolved),
	}, nil
}

// Package detect builds the affected-operation set with dual-phase
// detection: locators from a precomputed structural diff, unioned with an
// exhaustive pairwise comparison of the after document against the before
// document. The second phase exists because diff tools routinely skip
// non-semantic edits (descriptions, summaries, examples); comparing
// canonical forms catches everything.
package detect

import (
	"strings"

	"specslice/internal/diffreport"
	"specslice/internal/document"
	"specslice/internal/opkey"
)

// Result holds the detector output.
type Result struct {
	// Affected contains every operation judged changed or added by
	// either phase.
	Affected opkey.Set

	// Removed contains operations present in before but absent from
	// after. They never enter the output document; they exist so the
	// caller can log an explicit removal signal.
	Removed opkey.Set
}

// Detect runs both phases and returns the union.
func Detect(before, after *document.Document, report *diffreport.Report) Result {
	res := Result{
		Affected: opkey.NewSet(),
		Removed:  opkey.NewSet(),
	}

	res.Affected.Union(fromReport(report, after))
	deepCompare(before, after, &res)
	return res
}

// fromReport derives operation keys from the diff artifact's entity
// locators. Path-only locations expand to every verb present under that
// path in the after document, so the per-key decision rule still applies.
func fromReport(report *diffreport.Report, after *document.Document) opkey.Set {
	set := opkey.NewSet()
	for _, diff := range report.All() {
		loc, ok := opkey.ParseLocation(diff.Location())
		if !ok {
			continue
		}
		if !loc.PathOnly {
			set.Add(loc.Key)
			continue
		}
		item, ok := pathItem(after, loc.Path)
		if !ok {
			continue
		}
		for _, p := range item.Pairs {
			if opkey.IsMethod(p.Key) {
				set.Add(opkey.New(p.Key, loc.Path))
			}
		}
	}
	return set
}

// deepCompare walks every operation of the after document. New operations
// are affected; operations present on both sides are affected when their
// canonical forms differ. Operations only present in before are recorded
// as removed.
func deepCompare(before, after *document.Document, res *Result) {
	afterPaths := pathsOf(after)
	beforePaths := pathsOf(before)

	if afterPaths != nil {
		for _, p := range afterPaths.Pairs {
			if !p.Value.IsMapping() {
				continue
			}
			for _, item := range p.Value.Pairs {
				if !opkey.IsMethod(item.Key) {
					continue
				}
				key := opkey.New(item.Key, p.Key)
				beforeOp, ok := operation(beforePaths, p.Key, item.Key)
				if !ok {
					res.Affected.Add(key)
					continue
				}
				if !document.Equal(item.Value, beforeOp) {
					res.Affected.Add(key)
				}
			}
		}
	}

	if beforePaths != nil {
		for _, p := range beforePaths.Pairs {
			if !p.Value.IsMapping() {
				continue
			}
			for _, item := range p.Value.Pairs {
				if !opkey.IsMethod(item.Key) {
					continue
				}
				if _, ok := operation(afterPaths, p.Key, item.Key); !ok {
					res.Removed.Add(opkey.New(item.Key, p.Key))
				}
			}
		}
	}
}

func pathsOf(doc *document.Document) *document.Document {
	if doc == nil {
		return nil
	}
	paths, ok := doc.Get("paths")
	if !ok || !paths.IsMapping() {
		return nil
	}
	return paths
}

func pathItem(doc *document.Document, path string) (*document.Document, bool) {
	paths := pathsOf(doc)
	if paths == nil {
		return nil, false
	}
	item, ok := paths.Get(path)
	if !ok || !item.IsMapping() {
		return nil, false
	}
	return item, true
}

func operation(paths *document.Document, path, method string) (*document.Document, bool) {
	if paths == nil {
		return nil, false
	}
	item, ok := paths.Get(path)
	if !ok || !item.IsMapping() {
		return nil, false
	}
	for _, p := range item.Pairs {
		if strings.EqualFold(p.Key, method) {
			return p.Value, true
		}
	}
	return nil, false
}

// Package baseline extracts the set of legacy operations from a baseline
// interface-description document.
package baseline

import (
	"specslice/internal/document"
	"specslice/internal/opkey"
)

// Load walks the document's paths mapping and returns one key per
// recognized verb under each path. Non-verb path-item keys (parameters,
// summary, ...) are skipped. A nil document or one without a paths mapping
// yields an empty set.
func Load(doc *document.Document) opkey.Set {
	set := opkey.NewSet()
	if doc == nil {
		return set
	}
	paths, ok := doc.Get("paths")
	if !ok || !paths.IsMapping() {
		return set
	}
	for _, p := range paths.Pairs {
		if !p.Value.IsMapping() {
			continue
		}
		for _, item := range p.Value.Pairs {
			if opkey.IsMethod(item.Key) {
				set.Add(opkey.New(item.Key, p.Key))
			}
		}
	}
	return set
}

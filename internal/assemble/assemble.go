// Package assemble builds the filtered output document: for every affected
// operation it applies the legacy decision rule and copies included
// operation bodies verbatim from the after document. Reference nodes are
// never inlined; the closure resolver depends on them staying references.
package assemble

import (
	"specslice/internal/document"
	"specslice/internal/opkey"
)

// Verdict is the outcome for one evaluated operation key.
type Verdict string

const (
	// VerdictInclude: changed or added and not legacy; copied to output.
	VerdictInclude Verdict = "INCLUDE"
	// VerdictIgnore: legacy operation; excluded from the strict output.
	VerdictIgnore Verdict = "IGNORE"
	// VerdictRemoved: operation no longer exists in the after document;
	// nothing to copy, surfaced so deletions are not a silent no-op.
	VerdictRemoved Verdict = "REMOVED"
)

// Decision is one line of the decision log.
type Decision struct {
	Key     opkey.Key
	Verdict Verdict
	Reason  string
}

// Assemble filters the affected set against the baseline and returns the
// partial document plus the decision log. The output's paths and methods
// follow their order of appearance in the after document; decisions for
// operations missing from the after document follow, sorted.
func Assemble(after *document.Document, affected, base, removed opkey.Set) (*document.Document, []Decision) {
	out := skeleton()
	outPaths, _ := out.Get("paths")

	var decisions []Decision
	seen := opkey.NewSet()

	if paths, ok := after.Get("paths"); ok && paths.IsMapping() {
		for _, p := range paths.Pairs {
			if !p.Value.IsMapping() {
				continue
			}
			for _, item := range p.Value.Pairs {
				if !opkey.IsMethod(item.Key) {
					continue
				}
				key := opkey.New(item.Key, p.Key)
				if !affected.Has(key) {
					continue
				}
				seen.Add(key)
				if base.Has(key) {
					decisions = append(decisions, Decision{
						Key:     key,
						Verdict: VerdictIgnore,
						Reason:  "change to legacy operation",
					})
					continue
				}
				decisions = append(decisions, Decision{
					Key:     key,
					Verdict: VerdictInclude,
					Reason:  "changed or added operation",
				})
				copyOperation(outPaths, p.Key, item.Key, item.Value)
			}
		}
	}

	// Affected or removed keys with no body in the after document.
	missing := opkey.NewSet()
	for k := range affected {
		if !seen.Has(k) {
			missing.Add(k)
		}
	}
	missing.Union(removed)
	for _, key := range missing.Sorted() {
		if seen.Has(key) {
			continue
		}
		reason := "operation removed in after document"
		if base.Has(key) {
			reason = "legacy operation removed in after document"
		}
		decisions = append(decisions, Decision{
			Key:     key,
			Verdict: VerdictRemoved,
			Reason:  reason,
		})
	}

	return out, decisions
}

func skeleton() *document.Document {
	out := document.NewMapping()
	out.Set("openapi", document.String("3.0.0"))

	info := document.NewMapping()
	info.Set("title", document.String("Changed-Only API Spec"))
	info.Set("version", document.String("1.0.0"))
	out.Set("info", info)

	out.Set("paths", document.NewMapping())
	return out
}

func copyOperation(outPaths *document.Document, path, method string, body *document.Document) {
	item, ok := outPaths.Get(path)
	if !ok {
		item = document.NewMapping()
		outPaths.Set(path, item)
	}
	op := body.Clone()
	ensureResponses(op)
	item.Set(method, op)
}

// ensureResponses synthesizes a minimal default response when an included
// operation declares none, keeping the output well-formed for downstream
// validators.
func ensureResponses(op *document.Document) {
	if !op.IsMapping() {
		return
	}
	responses, ok := op.Get("responses")
	if ok && responses.IsMapping() && responses.Len() > 0 {
		return
	}
	def := document.NewMapping()
	def.Set("description", document.String("Default response"))
	wrapper := document.NewMapping()
	wrapper.Set("default", def)
	op.Set("responses", wrapper)
}

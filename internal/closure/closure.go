// Package closure copies the transitive closure of referenced component
// definitions from the after document into the assembled output, so every
// reference in the output resolves inside the output itself.
package closure

import (
	"strings"

	"specslice/internal/document"
)

const refPrefix = "#/components/"

// Resolve scans the output document's paths for reference strings, then
// walks a worklist copying every reachable #/components/<type>/<name>
// definition from the after document. The visited set guarantees
// termination for mutually-referencing definitions. References that do not
// resolve in the after document are returned; the resolver keeps going.
func Resolve(out, after *document.Document) []string {
	afterComponents := componentsOf(after)

	outComponents := document.NewMapping()
	out.Set("components", outComponents)

	queue := collectRefs(pathsOf(out))
	visited := make(map[string]struct{})
	needed := make(map[string]map[string]struct{})
	var unresolved []string

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		if _, ok := visited[ref]; ok {
			continue
		}
		visited[ref] = struct{}{}

		compType, compName, ok := splitRef(ref)
		if !ok {
			// External or non-component references stay as written; the
			// downstream validator owns them.
			continue
		}

		def, ok := lookup(afterComponents, compType, compName)
		if !ok {
			unresolved = append(unresolved, ref)
			continue
		}

		if needed[compType] == nil {
			needed[compType] = make(map[string]struct{})
		}
		needed[compType][compName] = struct{}{}

		queue = append(queue, collectRefs(def)...)
	}

	// Emit needed definitions in after-document order so output diffs stay
	// readable and runs stay byte-identical.
	if afterComponents != nil {
		for _, typePair := range afterComponents.Pairs {
			names := needed[typePair.Key]
			if len(names) == 0 || !typePair.Value.IsMapping() {
				continue
			}
			typeTable := document.NewMapping()
			for _, defPair := range typePair.Value.Pairs {
				if _, ok := names[defPair.Key]; ok {
					typeTable.Set(defPair.Key, defPair.Value.Clone())
				}
			}
			outComponents.Set(typePair.Key, typeTable)
		}
	}

	return unresolved
}

// collectRefs walks a subtree and returns every $ref string value in
// document order.
func collectRefs(d *document.Document) []string {
	var refs []string
	walkRefs(d, &refs)
	return refs
}

func walkRefs(d *document.Document, refs *[]string) {
	if d == nil {
		return
	}
	switch d.Kind {
	case document.KindMapping:
		for _, p := range d.Pairs {
			if p.Key == "$ref" && p.Value != nil && p.Value.Kind == document.KindScalar {
				if s := p.Value.StringValue(); s != "" {
					*refs = append(*refs, s)
				}
				continue
			}
			walkRefs(p.Value, refs)
		}
	case document.KindSequence:
		for _, item := range d.Items {
			walkRefs(item, refs)
		}
	}
}

// splitRef parses #/components/<type>/<name>; deeper pointer segments
// beyond the name are discarded.
func splitRef(ref string) (compType, compName string, ok bool) {
	if !strings.HasPrefix(ref, refPrefix) {
		return "", "", false
	}
	rest := strings.Split(strings.TrimPrefix(ref, refPrefix), "/")
	if len(rest) < 2 || rest[0] == "" || rest[1] == "" {
		return "", "", false
	}
	return rest[0], rest[1], true
}

func lookup(components *document.Document, compType, compName string) (*document.Document, bool) {
	if components == nil {
		return nil, false
	}
	typeTable, ok := components.Get(compType)
	if !ok || !typeTable.IsMapping() {
		return nil, false
	}
	return typeTable.Get(compName)
}

func componentsOf(doc *document.Document) *document.Document {
	if doc == nil {
		return nil
	}
	c, ok := doc.Get("components")
	if !ok || !c.IsMapping() {
		return nil
	}
	return c
}

func pathsOf(doc *document.Document) *document.Document {
	if doc == nil {
		return nil
	}
	p, ok := doc.Get("paths")
	if !ok {
		return nil
	}
	return p
}

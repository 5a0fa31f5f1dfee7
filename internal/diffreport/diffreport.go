// Package diffreport models the artifact produced by an external
// structural-diff tool: differences bucketed as breaking, non-breaking, or
// unclassified, each carrying entity locators into the source and
// destination documents.
package diffreport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntityDetail locates one side of a difference inside a document.
type EntityDetail struct {
	Location string `json:"location"`
	Value    any    `json:"value,omitempty"`
}

// Difference is a single entry of the diff artifact.
type Difference struct {
	Code                         string         `json:"code,omitempty"`
	Type                         string         `json:"type,omitempty"`
	Action                       string         `json:"action,omitempty"`
	SourceSpecEntityDetails      []EntityDetail `json:"sourceSpecEntityDetails,omitempty"`
	DestinationSpecEntityDetails []EntityDetail `json:"destinationSpecEntityDetails,omitempty"`
}

// Location returns the entry's best entity locator: the destination side
// when present, otherwise the source side, otherwise "".
func (d Difference) Location() string {
	for _, det := range d.DestinationSpecEntityDetails {
		if det.Location != "" {
			return det.Location
		}
	}
	for _, det := range d.SourceSpecEntityDetails {
		if det.Location != "" {
			return det.Location
		}
	}
	return ""
}

// Report is the parsed diff artifact.
type Report struct {
	BreakingDifferences     []Difference `json:"breakingDifferences"`
	NonBreakingDifferences  []Difference `json:"nonBreakingDifferences"`
	UnclassifiedDifferences []Difference `json:"unclassifiedDifferences"`

	// Differences is the fallback flat list some tools emit instead of
	// the three buckets.
	Differences []Difference `json:"differences"`
}

// All returns every difference across the three buckets, falling back to
// the flat list when the buckets are empty.
func (r *Report) All() []Difference {
	if r == nil {
		return nil
	}
	out := make([]Difference, 0,
		len(r.BreakingDifferences)+len(r.NonBreakingDifferences)+len(r.UnclassifiedDifferences))
	out = append(out, r.BreakingDifferences...)
	out = append(out, r.NonBreakingDifferences...)
	out = append(out, r.UnclassifiedDifferences...)
	if len(out) == 0 {
		out = append(out, r.Differences...)
	}
	return out
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes a diff artifact. Diff tools sometimes prepend log noise or
// a BOM to their JSON, so decoding starts at the first '{'. Empty input
// (or input with no object at all) is a valid, empty report.
func Parse(data []byte) (*Report, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Report{}, nil
	}
	// A bare JSON array of differences must be recognized before hunting
	// for '{', which would otherwise land on the first object inside it.
	if data[0] == '[' {
		var flat []Difference
		if err := json.Unmarshal(data, &flat); err != nil {
			return nil, fmt.Errorf("parsing diff artifact: %w", err)
		}
		return &Report{Differences: flat}, nil
	}
	if i := bytes.IndexByte(data, '{'); i >= 0 {
		data = data[i:]
	} else {
		return &Report{}, nil
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing diff artifact: %w", err)
	}
	return &r, nil
}

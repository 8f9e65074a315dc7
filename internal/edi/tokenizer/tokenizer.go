// Package tokenizer splits raw EDIFACT text into an ordered sequence of
// segments. It is deliberately forgiving: carrier EDIFACT in the wild is
// inconsistent, and the system's value is best-effort extraction of
// structured fields, not conformance checking. Envelope segments (UNH,
// UNT) are not validated, release characters are not unescaped, and
// segment terminators other than newline are not enforced.
package tokenizer

import "strings"

// Segment is one tagged record within an EDIFACT message. Field 0 is
// always the segment tag (e.g. "TDT", "LOC", "EQD"); Fields[i] for i>0
// holds the composite at position i, already split into sub-components.
type Segment struct {
	Tag    string
	Fields []Composite
}

// Composite is a single '+'-delimited field, split on ':' into
// sub-components. A field with no ':' yields a single-element Composite.
type Composite []string

// At returns the sub-component at index i, or "" if absent.
func (c Composite) At(i int) string {
	if i < 0 || i >= len(c) {
		return ""
	}
	return c[i]
}

// Field returns the composite field at index i, or an empty Composite if
// the segment has fewer fields. Index 0 is the segment tag's own
// composite and is rarely useful; callers normally want Field(1) and up.
func (s Segment) Field(i int) Composite {
	if i < 0 || i >= len(s.Fields) {
		return nil
	}
	return s.Fields[i]
}

// Tokenize splits raw into an ordered sequence of segments. Each newline-
// delimited line is one segment; empty lines are skipped. Unknown segment
// tags are still yielded — it is up to the parser to ignore them.
func Tokenize(raw string) []Segment {
	lines := strings.Split(raw, "\n")
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "+")
		composites := make([]Composite, len(fields))
		for i, f := range fields {
			composites[i] = strings.Split(f, ":")
		}
		segments = append(segments, Segment{
			Tag:    composites[0].At(0),
			Fields: composites,
		})
	}
	return segments
}

// Package baplie parses a BAPLIE (bay plan / stowage) EDIFACT message into
// a vessel header plus an ordered list of stowed containers.
//
// The parser is a small state machine over the tokenized segment stream:
// TDT and LOC segments update the header accumulators directly, while LOC
// (qualifier 147) and MEA segments modify whichever container slot is
// currently "open". EQD flushes the open slot (if any) and opens a new
// one. This mirrors the shape of the COARRI and CODECO parsers, but the
// three share no behavior beyond that shape — each has its own qualifier
// table and its own open-slot struct.
package baplie

import (
	"strings"

	"github.com/nezpik/pistology-tos/internal/edi/tokenizer"
	"github.com/nezpik/pistology-tos/internal/types"
	"github.com/shopspring/decimal"
)

// Parsed is the result of parsing a single BAPLIE message.
type Parsed struct {
	VesselName      *string
	VoyageNumber    *string
	PortOfLoading   *string
	PortOfDischarge *string
	Containers      []types.BaplieContainer
}

// container is the mutable open slot; EQD flushes it into Parsed.Containers
// before opening the next one.
type container struct {
	containerID   string
	bay           *string
	row           *string
	tier          *string
	size          *string
	containerType *string
	weight        *decimal.Decimal
}

func (c *container) empty() bool {
	return c.containerID == ""
}

// Parse tokenizes raw and runs the BAPLIE state machine over the result.
// It never fails: unparseable or unrecognized segments are silently
// ignored, and absent fields simply remain nil in the output.
func Parse(raw string) Parsed {
	segments := tokenizer.Tokenize(raw)

	var p Parsed
	var open container

	flush := func() {
		if open.empty() {
			return
		}
		p.Containers = append(p.Containers, types.BaplieContainer{
			ContainerID:   open.containerID,
			Bay:           open.bay,
			Row:           open.row,
			Tier:          open.tier,
			Size:          open.size,
			ContainerType: open.containerType,
			Weight:        open.weight,
		})
		open = container{}
	}

	for _, seg := range segments {
		switch seg.Tag {
		case "TDT":
			if voyage := seg.Field(2).At(0); voyage != "" {
				p.VoyageNumber = strPtr(voyage)
			}
			if vessel := seg.Field(8).At(0); vessel != "" {
				p.VesselName = strPtr(vessel)
			}

		case "LOC":
			qualifier := seg.Field(1).At(0)
			switch qualifier {
			case "5":
				if loc := seg.Field(2).At(0); loc != "" {
					p.PortOfLoading = strPtr(loc)
				}
			case "61", "7":
				if loc := seg.Field(2).At(0); loc != "" {
					p.PortOfDischarge = strPtr(loc)
				}
			case "147":
				loc := seg.Field(2)
				if len(loc) >= 3 {
					open.bay = strPtr(loc.At(0))
					open.row = strPtr(loc.At(1))
					open.tier = strPtr(loc.At(2))
				}
			}

		case "EQD":
			flush()
			open.containerID = seg.Field(2).At(0)
			sizeType := seg.Field(3).At(0)
			if sizeType != "" {
				if len(sizeType) >= 2 {
					open.size = strPtr(sizeType[:2])
				} else {
					open.size = strPtr(sizeType)
				}
				open.containerType = strPtr(sizeType)
			}

		case "MEA":
			qualifier := seg.Field(1).At(0)
			if qualifier == "AAE" || qualifier == "VGM" {
				value := lastNonEmpty(seg.Field(3))
				if d, err := decimal.NewFromString(value); err == nil {
					open.weight = &d
				}
			}
		}
	}

	flush()
	return p
}

func strPtr(s string) *string { return &s }

// lastNonEmpty returns the last sub-component of a composite, regardless
// of how many sub-components precede it.
func lastNonEmpty(c tokenizer.Composite) string {
	if len(c) == 0 {
		return ""
	}
	return strings.TrimSpace(c[len(c)-1])
}

// Package coarri parses a COARRI (container discharge/load report)
// EDIFACT message into a vessel header plus an ordered list of container
// movements. See the baplie package for the shared state-machine shape;
// the qualifier tables below are specific to COARRI.
package coarri

import (
	"strings"

	"github.com/nezpik/pistology-tos/internal/edi/tokenizer"
	"github.com/nezpik/pistology-tos/internal/types"
)

// Parsed is the result of parsing a single COARRI message.
type Parsed struct {
	VesselName   *string
	VoyageNumber *string
	Movements    []types.CoarriMovement
}

type movement struct {
	containerID      string
	movementType     *types.MovementType
	stowageLocation  *string
	isoContainerType *string
}

func (m *movement) empty() bool { return m.containerID == "" }

// Parse tokenizes raw and runs the COARRI state machine over the result.
func Parse(raw string) Parsed {
	segments := tokenizer.Tokenize(raw)

	var p Parsed
	var open movement

	flush := func() {
		if open.empty() {
			return
		}
		p.Movements = append(p.Movements, types.CoarriMovement{
			ContainerID:      open.containerID,
			MovementType:     open.movementType,
			StowageLocation:  open.stowageLocation,
			IsoContainerType: open.isoContainerType,
		})
		open = movement{}
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

		case "EQD":
			flush()
			open.containerID = seg.Field(2).At(0)
			if iso := seg.Field(3).At(0); iso != "" {
				open.isoContainerType = strPtr(iso)
			}

		case "RFF":
			qualifier := seg.Field(1).At(0)
			if qualifier == "BM" || qualifier == "ABO" {
				value := strings.ToUpper(seg.Field(1).At(1))
				if mt := movementFromText(value); mt != nil {
					open.movementType = mt
				}
			}

		case "FTX":
			if open.movementType == nil {
				value := strings.ToUpper(seg.Field(3).At(0))
				if mt := movementFromText(value); mt != nil {
					open.movementType = mt
				}
			}

		case "LOC":
			qualifier := seg.Field(1).At(0)
			if qualifier == "147" || qualifier == "7" {
				if loc := seg.Field(2).At(0); loc != "" {
					open.stowageLocation = strPtr(loc)
				}
			}
		}
	}

	flush()
	return p
}

// movementFromText matches the same substring rules used by both COARRI
// (LOAD/DISCH/SHIFT) and the RFF/FTX free text feeding into it.
func movementFromText(upper string) *types.MovementType {
	switch {
	case strings.Contains(upper, "LOAD"):
		return movementPtr(types.MovementLoad)
	case strings.Contains(upper, "DISCH"):
		return movementPtr(types.MovementDischarge)
	case strings.Contains(upper, "SHIFT"):
		return movementPtr(types.MovementShift)
	default:
		return nil
	}
}

func strPtr(s string) *string                        { return &s }
func movementPtr(mt types.MovementType) *types.MovementType { return &mt }

// Package codeco parses a CODECO (container gate-in/gate-out report)
// EDIFACT message into a gate identifier plus an ordered list of
// container movements. See the baplie package for the shared
// state-machine shape; the qualifier tables below are specific to
// CODECO.
package codeco

import (
	"strings"

	"github.com/nezpik/pistology-tos/internal/edi/tokenizer"
	"github.com/nezpik/pistology-tos/internal/types"
)

// Parsed is the result of parsing a single CODECO message.
type Parsed struct {
	Gate      *string
	Movements []types.CodecoMovement
}

type movement struct {
	containerID       string
	movementType      *types.MovementType
	truckLicensePlate *string
	isoContainerType  *string
}

func (m *movement) empty() bool { return m.containerID == "" }

// Parse tokenizes raw and runs the CODECO state machine over the result.
func Parse(raw string) Parsed {
	segments := tokenizer.Tokenize(raw)

	var p Parsed
	var open movement

	flush := func() {
		if open.empty() {
			return
		}
		p.Movements = append(p.Movements, types.CodecoMovement{
			ContainerID:       open.containerID,
			MovementType:      open.movementType,
			TruckLicensePlate: open.truckLicensePlate,
			IsoContainerType:  open.isoContainerType,
		})
		open = movement{}
	}

	for _, seg := range segments {
		switch seg.Tag {
		case "LOC":
			qualifier := seg.Field(1).At(0)
			if (qualifier == "9" || qualifier == "11") && p.Gate == nil {
				if gate := seg.Field(2).At(0); gate != "" {
					p.Gate = strPtr(gate)
				}
			}

		case "EQD":
			flush()
			open.containerID = seg.Field(2).At(0)
			if iso := seg.Field(3).At(0); iso != "" {
				open.isoContainerType = strPtr(iso)
			}

		case "TDT":
			mode := seg.Field(1).At(0)
			if mode == "1" || mode == "3" {
				if plate := seg.Field(8).At(0); plate != "" {
					open.truckLicensePlate = strPtr(plate)
				}
			}

		case "RFF":
			qualifier := seg.Field(1).At(0)
			if (qualifier == "CN" || qualifier == "TN") && open.truckLicensePlate == nil {
				if plate := seg.Field(1).At(1); plate != "" {
					open.truckLicensePlate = strPtr(plate)
				}
			}

		case "HAN":
			switch seg.Field(1).At(0) {
			case "2", "5":
				open.movementType = movementPtr(types.MovementIn)
			case "3", "6":
				open.movementType = movementPtr(types.MovementOut)
			}

		case "FTX":
			if open.movementType == nil {
				upper := strings.ToUpper(seg.Field(3).At(0))
				switch {
				case strings.Contains(upper, "GATE-IN"), strings.Contains(upper, "GATE IN"):
					open.movementType = movementPtr(types.MovementIn)
				case strings.Contains(upper, "GATE-OUT"), strings.Contains(upper, "GATE OUT"):
					open.movementType = movementPtr(types.MovementOut)
				}
			}
		}
	}

	flush()
	return p
}

func strPtr(s string) *string                        { return &s }
func movementPtr(mt types.MovementType) *types.MovementType { return &mt }

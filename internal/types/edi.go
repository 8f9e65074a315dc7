// Package types defines the domain records shared by the EDI ingestion
// pipeline: the stored envelope, the three typed parent/child records, and
// the assembled projection returned to callers.
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MessageType is one of the three EDIFACT message tags the ingestion
// pipeline accepts.
type MessageType string

const (
	MessageTypeBaplie MessageType = "BAPLIE"
	MessageTypeCoarri MessageType = "COARRI"
	MessageTypeCodeco MessageType = "CODECO"
)

// Valid reports whether mt is one of the three accepted tags.
func (mt MessageType) Valid() bool {
	switch mt {
	case MessageTypeBaplie, MessageTypeCoarri, MessageTypeCodeco:
		return true
	default:
		return false
	}
}

// EdiMessage is the stored envelope: the raw text plus the metadata the
// Coordinator attaches at insert time. Once inserted it is never mutated.
type EdiMessage struct {
	ID          int64       `json:"id"`
	MessageType MessageType `json:"message_type"`
	Content     string      `json:"content"`
	ContainerID string      `json:"container_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// BaplieParent is the one-to-one BAPLIE header row for an envelope.
type BaplieParent struct {
	ID               int64   `json:"id"`
	EdiMessageID     int64   `json:"edi_message_id"`
	VesselName       *string `json:"vessel_name"`
	VoyageNumber     *string `json:"voyage_number"`
	PortOfLoading    *string `json:"port_of_loading"`
	PortOfDischarge  *string `json:"port_of_discharge"`
}

// BaplieContainer is one stowed container extracted from a BAPLIE message,
// ordered by the position its closing EQD segment appeared in the source.
type BaplieContainer struct {
	ID            int64            `json:"id,omitempty"`
	ParentID      int64            `json:"-"`
	ContainerID   string           `json:"container_id"`
	Bay           *string          `json:"bay"`
	Row           *string          `json:"row"`
	Tier          *string          `json:"tier"`
	Size          *string          `json:"size"`
	ContainerType *string          `json:"container_type"`
	Weight        *decimal.Decimal `json:"weight"`
}

// CoarriParent is the one-to-one COARRI header row for an envelope.
type CoarriParent struct {
	ID           int64   `json:"id"`
	EdiMessageID int64   `json:"edi_message_id"`
	VesselName   *string `json:"vessel_name"`
	VoyageNumber *string `json:"voyage_number"`
}

// MovementType classifies a COARRI/CODECO movement. Movements hold it as a
// *MovementType; nil means unset (the segment that would have set it was
// absent or unrecognized).
type MovementType string

const (
	MovementLoad      MovementType = "LOAD"
	MovementDischarge MovementType = "DISCHARGE"
	MovementShift     MovementType = "SHIFT"
	MovementIn        MovementType = "IN"
	MovementOut       MovementType = "OUT"
)

// CoarriMovement is one container handling event extracted from a COARRI
// message, ordered by the position its closing EQD segment appeared in.
type CoarriMovement struct {
	ID               int64         `json:"id,omitempty"`
	ParentID         int64         `json:"-"`
	ContainerID      string        `json:"container_id"`
	MovementType     *MovementType `json:"movement_type"`
	StowageLocation  *string       `json:"stowage_location"`
	IsoContainerType *string       `json:"iso_container_type"`
}

// CodecoParent is the one-to-one CODECO header row for an envelope.
type CodecoParent struct {
	ID           int64   `json:"id"`
	EdiMessageID int64   `json:"edi_message_id"`
	Gate         *string `json:"gate"`
}

// CodecoMovement is one gate-in/gate-out event extracted from a CODECO
// message, ordered by the position its closing EQD segment appeared in.
type CodecoMovement struct {
	ID                int64         `json:"id,omitempty"`
	ParentID          int64         `json:"-"`
	ContainerID       string        `json:"container_id"`
	MovementType      *MovementType `json:"movement_type"`
	TruckLicensePlate *string       `json:"truck_license_plate"`
	IsoContainerType  *string       `json:"iso_container_type"`
}

// BaplieProjection is a BAPLIE header joined with its ordered containers.
type BaplieProjection struct {
	*BaplieParent
	Containers []BaplieContainer `json:"containers"`
}

// CoarriProjection is a COARRI header joined with its ordered movements.
type CoarriProjection struct {
	*CoarriParent
	Movements []CoarriMovement `json:"movements"`
}

// CodecoProjection is a CODECO header joined with its ordered movements.
type CodecoProjection struct {
	*CodecoParent
	Movements []CodecoMovement `json:"movements"`
}

// EdiView is the assembled response for one envelope: the envelope itself
// plus exactly one of the three typed projections, selected by MessageType.
type EdiView struct {
	EdiMessage
	BaplieMessage *BaplieProjection `json:"baplie_message"`
	CoarriMessage *CoarriProjection `json:"coarri_message"`
	CodecoMessage *CodecoProjection `json:"codeco_message"`
}

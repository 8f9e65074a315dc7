package baplie

import (
	"testing"

	"github.com/shopspring/decimal"
)

func strVal(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

// TestParseSingleContainer covers S1: a single EQD with a two-sub-component
// LOC+147 (too short to set bay/row/tier), a VGM weight, and both port
// qualifiers.
func TestParseSingleContainer(t *testing.T) {
	raw := `UNH+1+BAPLIE:D:95B:UN
TDT+20+V123+1++CARRIER+++VESSEL_NAME:::5
LOC+5+USNYC:139:6
LOC+61+GBSOU:139:6
EQD+CN+CONTAINER123+45G1:102
LOC+147+010203:5
MEA+AAE+VGM+KGM:15000
UNT+7+1
`
	p := Parse(raw)

	if strVal(p.VesselName) != "VESSEL_NAME" {
		t.Errorf("VesselName = %q, want VESSEL_NAME", strVal(p.VesselName))
	}
	if strVal(p.VoyageNumber) != "V123" {
		t.Errorf("VoyageNumber = %q, want V123", strVal(p.VoyageNumber))
	}
	if strVal(p.PortOfLoading) != "USNYC" {
		t.Errorf("PortOfLoading = %q, want USNYC", strVal(p.PortOfLoading))
	}
	if strVal(p.PortOfDischarge) != "GBSOU" {
		t.Errorf("PortOfDischarge = %q, want GBSOU", strVal(p.PortOfDischarge))
	}

	if len(p.Containers) != 1 {
		t.Fatalf("got %d containers, want 1", len(p.Containers))
	}
	c := p.Containers[0]
	if c.ContainerID != "CONTAINER123" {
		t.Errorf("ContainerID = %q", c.ContainerID)
	}
	if strVal(c.Size) != "45" {
		t.Errorf("Size = %q, want 45", strVal(c.Size))
	}
	if strVal(c.ContainerType) != "45G1" {
		t.Errorf("ContainerType = %q, want 45G1", strVal(c.ContainerType))
	}
	if c.Weight == nil || !c.Weight.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("Weight = %v, want 15000", c.Weight)
	}
	// LOC+147's field has only 2 sub-components ("010203", "5"); bay/row/tier
	// require >= 3 and must remain nil.
	if c.Bay != nil || c.Row != nil || c.Tier != nil {
		t.Errorf("bay/row/tier should remain nil for a 2-sub-component LOC+147, got %v/%v/%v", c.Bay, c.Row, c.Tier)
	}
}

// TestParseTwoEQDsFlushOnSecond covers S4: weight attaches to the first
// container because EQD flushes the open slot before the second starts.
func TestParseTwoEQDsFlushOnSecond(t *testing.T) {
	raw := `UNH+1+BAPLIE:D:95B:UN
EQD+CN+FIRST001+22G1:102
MEA+AAE+VGM+KGM:8000
EQD+CN+SECOND002+22G1:102
UNT+4+1
`
	p := Parse(raw)
	if len(p.Containers) != 2 {
		t.Fatalf("got %d containers, want 2", len(p.Containers))
	}
	if p.Containers[0].ContainerID != "FIRST001" {
		t.Errorf("Containers[0].ContainerID = %q, want FIRST001", p.Containers[0].ContainerID)
	}
	if p.Containers[0].Weight == nil || !p.Containers[0].Weight.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("weight should attach to the first container, got %v", p.Containers[0].Weight)
	}
	if p.Containers[1].Weight != nil {
		t.Errorf("second container should have no weight, got %v", p.Containers[1].Weight)
	}
}

func TestParseLastWriteWinsOnLoc147(t *testing.T) {
	raw := `UNH+1+BAPLIE:D:95B:UN
EQD+CN+CONTAINER123+22G1:102
LOC+147+01:02:03
LOC+147+09:08:07
UNT+4+1
`
	p := Parse(raw)
	if len(p.Containers) != 1 {
		t.Fatalf("got %d containers, want 1", len(p.Containers))
	}
	c := p.Containers[0]
	if strVal(c.Bay) != "09" || strVal(c.Row) != "08" || strVal(c.Tier) != "07" {
		t.Errorf("expected the second LOC+147 to win, got bay=%q row=%q tier=%q", strVal(c.Bay), strVal(c.Row), strVal(c.Tier))
	}
}

func TestParseEQDWithoutContainerIDIsIgnored(t *testing.T) {
	raw := `UNH+1+BAPLIE:D:95B:UN
EQD+CN++22G1:102
UNT+3+1
`
	p := Parse(raw)
	if len(p.Containers) != 0 {
		t.Errorf("an EQD with an empty container id should not flush a container, got %d", len(p.Containers))
	}
}

func TestParseIgnoresUnknownSegments(t *testing.T) {
	raw := "ZZZ+whatever\nUNH+1+BAPLIE:D:95B:UN\n"
	p := Parse(raw)
	if len(p.Containers) != 0 {
		t.Errorf("parse of an unrecognized-only message should produce zero containers")
	}
}

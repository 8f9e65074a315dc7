package tokenizer

import "testing"

func TestTokenizeSplitsOnNewlineAndPlus(t *testing.T) {
	raw := "UNH+1+BAPLIE:D:95B:UN\nTDT+20+V123\n"
	segments := Tokenize(raw)

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Tag != "UNH" {
		t.Errorf("segments[0].Tag = %q, want UNH", segments[0].Tag)
	}
	if segments[1].Tag != "TDT" {
		t.Errorf("segments[1].Tag = %q, want TDT", segments[1].Tag)
	}
}

func TestTokenizeSkipsEmptyLines(t *testing.T) {
	raw := "UNH+1\n\n\nTDT+20\n"
	segments := Tokenize(raw)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2 (blank lines should be skipped)", len(segments))
	}
}

func TestTokenizeTrimsCarriageReturn(t *testing.T) {
	raw := "UNH+1\r\nTDT+20\r\n"
	segments := Tokenize(raw)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Field(1).At(0) != "1" {
		t.Errorf("field not parsed cleanly, got %q", segments[0].Field(1).At(0))
	}
}

func TestTokenizeSplitsCompositeSubComponents(t *testing.T) {
	raw := "LOC+147+010203:5\n"
	segments := Tokenize(raw)
	loc := segments[0].Field(2)
	if loc.At(0) != "010203" || loc.At(1) != "5" {
		t.Errorf("composite split = %v, want [010203 5]", loc)
	}
}

func TestCompositeAtOutOfRange(t *testing.T) {
	c := Composite{"a", "b"}
	if c.At(-1) != "" || c.At(2) != "" {
		t.Errorf("At() should return empty string out of range")
	}
}

func TestSegmentFieldOutOfRange(t *testing.T) {
	s := Segment{Tag: "LOC", Fields: []Composite{{"LOC"}}}
	if s.Field(5) != nil {
		t.Errorf("Field() should return nil for an out-of-range index")
	}
}

func TestTokenizeUnknownSegmentStillYielded(t *testing.T) {
	raw := "ZZZ+whatever\n"
	segments := Tokenize(raw)
	if len(segments) != 1 || segments[0].Tag != "ZZZ" {
		t.Errorf("unknown segment tags must still be tokenized, got %+v", segments)
	}
}

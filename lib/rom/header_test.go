package rom

import (
	"testing"

	"github.com/ndskit/ndspack/lib/crc16"
)

func blankHeader() *Header {
	return &Header{
		Title:     "TEST        ",
		GameCode:  "ABCD",
		MakerCode: "01",
		HeaderSize: HeaderSize,
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := blankHeader()
	h.ARM9 = ProgramOffset{Offset: 0x4000, Entry: 0x02000000, BaseAddr: 0x02000000, Size: 0x1000}
	h.RomSize = 0x8000
	h.RecomputeHeaderCRC(crc16.Checksum)

	got, err := ParseHeader(h.Bytes())
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if got.Title != h.Title || got.GameCode != h.GameCode || got.MakerCode != h.MakerCode {
		t.Fatalf("string fields did not round trip: %+v", got)
	}
	if got.ARM9 != h.ARM9 {
		t.Fatalf("ARM9 program offset did not round trip: got %+v, want %+v", got.ARM9, h.ARM9)
	}
	if got.HeaderCRC != h.HeaderCRC {
		t.Fatalf("HeaderCRC did not round trip: got %#04x, want %#04x", got.HeaderCRC, h.HeaderCRC)
	}
}

// TestHeaderCRCScenario mirrors the literal end-to-end scenario #5: a
// header with every field zero except title/gamecode/makercode, whose
// assembled header_crc must equal CRC16-MODBUS of the preceding bytes.
func TestHeaderCRCScenario(t *testing.T) {
	h := blankHeader()
	h.RecomputeHeaderCRC(crc16.Checksum)

	b := h.Bytes()
	want := crc16.Checksum(b[:offHeaderCRC])
	if h.HeaderCRC != want {
		t.Fatalf("header_crc = %#04x, want %#04x", h.HeaderCRC, want)
	}

	reparsed, err := ParseHeader(b)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if reparsed.HeaderCRC != want {
		t.Fatalf("reparsed header_crc = %#04x, want %#04x", reparsed.HeaderCRC, want)
	}
}

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	_, err := ParseHeader(make([]byte, HeaderSize-1))
	if !IsSizeMismatch(err) {
		t.Fatalf("expected SizeMismatch, got %v", err)
	}
}

func TestCapacityForSize(t *testing.T) {
	cases := []struct {
		size uint32
		want byte
	}{
		{0, 0},
		{128 * 1024, 0},
		{128*1024 + 1, 1},
		{256 * 1024, 1},
		{512 * 1024, 2},
		{1024 * 1024, 3},
		{2 * 1024 * 1024, 4},
	}
	for _, c := range cases {
		if got := CapacityForSize(c.size); got != c.want {
			t.Errorf("CapacityForSize(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

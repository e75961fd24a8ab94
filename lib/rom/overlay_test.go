package rom

import "testing"

func TestOverlayTableRoundTrip(t *testing.T) {
	entries := []OverlayEntry{
		{ID: 0, BaseAddr: 0x02100000, CodeSize: 0x2000, BssSize: 0x400, CtorStart: 0x02100010, CtorEnd: 0x02100020, FileID: 3, CompressedSize: 0x1800, IsCompressed: true, IsSigned: false},
		{ID: 1, BaseAddr: 0x02200000, FileID: 4, IsSigned: true},
	}

	got, err := ParseOverlayTable(OverlayTableBytes(entries))
	if err != nil {
		t.Fatalf("ParseOverlayTable: %v", err)
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestOverlayCompressedSizeMaskedTo24Bits(t *testing.T) {
	e := OverlayEntry{CompressedSize: 0xFFFFFFFF}
	var b [overlayEntrySize]byte
	e.put(b[:])
	got := parseOverlayEntry(b[:])
	if got.CompressedSize != overlayCompressedSizeMask {
		t.Fatalf("CompressedSize = %#x, want %#x", got.CompressedSize, overlayCompressedSizeMask)
	}
}

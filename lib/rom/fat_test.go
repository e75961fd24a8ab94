package rom

import "testing"

func TestFATRoundTrip(t *testing.T) {
	entries := []FATEntry{
		{Start: 0x4000, End: 0x4200},
		{Start: 0x4200, End: 0x4800},
		{Start: 0x4800, End: 0x4800}, // empty file
	}

	got, err := ParseFAT(FATBytes(entries))
	if err != nil {
		t.Fatalf("ParseFAT: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
	if entries[1].Size() != 0x600 {
		t.Errorf("Size() = %#x, want 0x600", entries[1].Size())
	}
}

func TestParseFATRejectsOddLength(t *testing.T) {
	if _, err := ParseFAT(make([]byte, fatEntrySize+1)); !IsSizeMismatch(err) {
		t.Fatalf("expected SizeMismatch, got %v", err)
	}
}

package bitio

import "testing"

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)
	w.WriteBits(0b11001100, 8)
	w.WriteBit(1)

	data := w.Bytes()

	r := NewReader(data)
	got, err := r.ReadBits(3)
	if err != nil || got != 0b101 {
		t.Fatalf("ReadBits(3) = %03b, %v, want 101, nil", got, err)
	}
	got, err = r.ReadBits(8)
	if err != nil || got != 0b11001100 {
		t.Fatalf("ReadBits(8) = %08b, %v, want 11001100, nil", got, err)
	}
	got, err = r.ReadBit()
	if err != nil || got != 1 {
		t.Fatalf("ReadBit() = %d, %v, want 1, nil", got, err)
	}
}

func TestReaderPastEnd(t *testing.T) {
	r := NewReader([]byte{0xFF})
	if _, err := r.ReadBits(9); err == nil {
		t.Fatal("ReadBits(9) on one byte: expected error, got nil")
	}
}

func TestBitsRemaining(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00})
	if got := r.BitsRemaining(); got != 16 {
		t.Fatalf("BitsRemaining() = %d, want 16", got)
	}
	if _, err := r.ReadBits(10); err != nil {
		t.Fatalf("ReadBits(10): %v", err)
	}
	if got := r.BitsRemaining(); got != 6 {
		t.Fatalf("BitsRemaining() after reading 10 = %d, want 6", got)
	}
}

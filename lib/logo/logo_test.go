package logo

import "testing"

func TestRoundTripBlankBitmap(t *testing.T) {
	var bmp Bitmap
	compressed := Compress(bmp)

	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got != bmp {
		t.Fatal("round trip of blank bitmap did not reproduce the original")
	}
}

func TestRoundTripSinglePixel(t *testing.T) {
	var bmp Bitmap
	bmp.Set(0, 0, true)

	compressed := Compress(bmp)
	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got != bmp {
		t.Fatal("round trip of single-pixel bitmap did not reproduce the original")
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := x == 0 && y == 0
			if got.Get(x, y) != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.Get(x, y), want)
			}
		}
	}
}

func TestRoundTripCheckerboard(t *testing.T) {
	var bmp Bitmap
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			bmp.Set(x, y, (x+y)%2 == 0)
		}
	}

	compressed := Compress(bmp)
	got, err := Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if got != bmp {
		t.Fatal("round trip of checkerboard bitmap did not reproduce the original")
	}
}

func TestEncodeHeaderSlotFitsBlankBitmap(t *testing.T) {
	var bmp Bitmap
	slot, err := EncodeHeaderSlot(bmp)
	if err != nil {
		t.Fatalf("EncodeHeaderSlot: %v", err)
	}
	got, err := DecodeHeaderSlot(slot)
	if err != nil {
		t.Fatalf("DecodeHeaderSlot: %v", err)
	}
	if got != bmp {
		t.Fatal("header-slot round trip did not reproduce the original bitmap")
	}
}

func TestDecompressRejectsBadMagic(t *testing.T) {
	var bmp Bitmap
	compressed := Compress(bmp)
	compressed[0] ^= 0xFF
	if _, err := Decompress(compressed); err == nil {
		t.Fatal("Decompress should reject a corrupted header magic")
	}
}

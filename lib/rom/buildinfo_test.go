package rom

import "testing"

func TestBuildInfoRoundTrip(t *testing.T) {
	bi := &BuildInfo{
		AutoloadListStart: 0x1000,
		AutoloadListEnd:   0x1020,
		AutoloadStart:     0x02000000,
		BssStart:          0x02001000,
		BssEnd:            0x02002000,
		CompressedCodeEnd: 0,
	}

	got, err := ParseBuildInfo(bi.Bytes())
	if err != nil {
		t.Fatalf("ParseBuildInfo: %v", err)
	}
	if *got != *bi {
		t.Fatalf("build info did not round trip: got %+v, want %+v", got, bi)
	}
	if got.IsCompressed() {
		t.Fatal("zero CompressedCodeEnd should report IsCompressed() == false")
	}
}

func TestBuildInfoRejectsBadNitrocode(t *testing.T) {
	bi := &BuildInfo{}
	b := bi.Bytes()
	b[24] ^= 0xFF // corrupt the nitrocode word
	if _, err := ParseBuildInfo(b); !IsMagicMismatch(err) {
		t.Fatalf("expected MagicMismatch, got %v", err)
	}
}

func TestARM9FooterRoundTrip(t *testing.T) {
	f := &ARM9Footer{BuildInfoOffset: 0x4100, OverlaySignaturesOffset: 0x8000}
	got, err := ParseARM9Footer(f.Bytes())
	if err != nil {
		t.Fatalf("ParseARM9Footer: %v", err)
	}
	if *got != *f {
		t.Fatalf("footer did not round trip: got %+v, want %+v", got, f)
	}
}

func TestBuildInfoOffsetKind(t *testing.T) {
	if !BuildInfoOffsetKind(0x5000, 0x4000) {
		t.Fatal("offset past the program's ROM offset should be absolute")
	}
	if BuildInfoOffsetKind(0x100, 0x4000) != false {
		t.Fatal("offset before the program's ROM offset should be ARM9-relative")
	}
}

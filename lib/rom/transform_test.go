package rom

import (
	"bytes"
	"testing"

	"github.com/ndskit/ndspack/lib/lz77"
)

func TestProgramWithoutBuildInfoNeverReportsCompressed(t *testing.T) {
	// IsCompressed is driven entirely by BuildInfo.CompressedCodeEnd, so
	// a program with no build info (e.g. one whose build info was not
	// found at extract time) cannot be tracked as compressed through this API and
	// DecompressProgram is correctly a no-op for it.
	plain := bytes.Repeat([]byte("deadbeefdeadbeefdeadbeef"), 700) // > ARM9CompressionStart
	p := &Program{Code: append([]byte(nil), plain...)}

	if p.IsCompressed() {
		t.Fatal("program with no BuildInfo must not report compressed")
	}

	if err := CompressProgram(p, lz77.VersionPostDSi); err != nil {
		t.Fatalf("CompressProgram: %v", err)
	}
	if p.IsCompressed() {
		t.Fatal("still no BuildInfo after CompressProgram, must still report not compressed")
	}

	plainAgain, err := lz77.Decompress(p.Code)
	if err != nil {
		t.Fatalf("lz77.Decompress: %v", err)
	}
	if !bytes.Equal(plainAgain, plain) {
		t.Fatalf("code mismatch after round trip: got %x, want %x", plainAgain, plain)
	}
}

func TestProgramCompressDecompressRoundTripWithBuildInfo(t *testing.T) {
	plain := bytes.Repeat([]byte("abcdefghij"), 1700) // > ARM9CompressionStart
	p := &Program{
		BaseAddress: 0x02000000,
		Code:        append([]byte(nil), plain...),
		BuildInfo:   &BuildInfo{AutoloadListStart: 0x02001000},
	}

	if err := CompressProgram(p, lz77.VersionOriginal); err != nil {
		t.Fatalf("CompressProgram: %v", err)
	}
	if !p.IsCompressed() {
		t.Fatal("expected IsCompressed after CompressProgram")
	}
	if p.BuildInfo.CompressedCodeEnd == 0 {
		t.Fatal("CompressProgram must set CompressedCodeEnd when BuildInfo is present")
	}

	if err := DecompressProgram(p); err != nil {
		t.Fatalf("DecompressProgram: %v", err)
	}
	if p.IsCompressed() {
		t.Fatal("expected not compressed after DecompressProgram")
	}
	if !bytes.Equal(p.Code, plain) {
		t.Fatalf("code mismatch after round trip: got %x, want %x", p.Code, plain)
	}
}

func TestOverlayCompressDecompressRoundTrip(t *testing.T) {
	plain := bytes.Repeat([]byte("overlaypayload"), 6)
	ov := &Overlay{
		Entry: OverlayEntry{ID: 2, FileID: 2},
		Code:  append([]byte(nil), plain...),
	}

	if err := CompressOverlay(ov, lz77.VersionPostDSi); err != nil {
		t.Fatalf("CompressOverlay: %v", err)
	}
	if !ov.Entry.IsCompressed {
		t.Fatal("expected IsCompressed after CompressOverlay")
	}
	if ov.Entry.CompressedSize != uint32(len(ov.Code)) {
		t.Fatalf("CompressedSize = %d, want %d", ov.Entry.CompressedSize, len(ov.Code))
	}

	if err := DecompressOverlay(ov); err != nil {
		t.Fatalf("DecompressOverlay: %v", err)
	}
	if ov.Entry.IsCompressed || ov.Entry.CompressedSize != 0 {
		t.Fatalf("entry not reset after decompress: %+v", ov.Entry)
	}
	if !bytes.Equal(ov.Code, plain) {
		t.Fatalf("code mismatch after round trip: got %x, want %x", ov.Code, plain)
	}
}

func TestSyncBuildInfoToCodeIsNoOpWhileCompressed(t *testing.T) {
	plain := make([]byte, ARM9CompressionStart+512) // > ARM9CompressionStart
	bi := &BuildInfo{AutoloadListStart: 0x1111}
	biOffset := 16
	copy(plain[biOffset:], bi.Bytes())

	p := &Program{
		Code:                append([]byte(nil), plain...),
		BuildInfo:           bi,
		BuildInfoCodeOffset: uint32(biOffset),
	}
	if err := CompressProgram(p, lz77.VersionPostDSi); err != nil {
		t.Fatalf("CompressProgram: %v", err)
	}

	before := append([]byte(nil), p.Code...)
	p.BuildInfo.AutoloadListStart = 0x2222
	p.syncBuildInfoToCode()
	if !bytes.Equal(p.Code, before) {
		t.Fatal("syncBuildInfoToCode must not touch compressed code")
	}
}

func TestSyncBuildInfoToCodePatchesPlaintext(t *testing.T) {
	plain := make([]byte, 64)
	bi := &BuildInfo{AutoloadListStart: 0x1111}
	biOffset := 16
	copy(plain[biOffset:], bi.Bytes())

	p := &Program{
		Code:                append([]byte(nil), plain...),
		BuildInfo:           bi,
		BuildInfoCodeOffset: uint32(biOffset),
	}

	p.BuildInfo.AutoloadListStart = 0x2222
	p.syncBuildInfoToCode()

	reparsed, err := ParseBuildInfo(p.Code[biOffset : biOffset+buildInfoSize])
	if err != nil {
		t.Fatalf("ParseBuildInfo: %v", err)
	}
	if reparsed.AutoloadListStart != 0x2222 {
		t.Fatalf("AutoloadListStart = %#x, want 0x2222", reparsed.AutoloadListStart)
	}
}

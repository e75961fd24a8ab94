package rom

import "github.com/ndskit/ndspack/lib/lz77"

// ARM9CompressionStart is the offset into the ARM9 program at which
// compression always begins. The secure area and the self-decompression
// stub that precede it are never compressed, since the stub has to run
// uncompressed to decompress everything after it. Overlays carry no
// such stub and compress from offset 0.
const ARM9CompressionStart = 0x4000

// DecompressProgram replaces p.Code with its LZ77-decompressed form,
// if compressed. A no-op when the program carries no build info or is
// already plain (§4.8 step 8: decompression is always explicit).
func DecompressProgram(p *Program) error {
	if !p.IsCompressed() {
		return nil
	}
	plain, err := lz77.Decompress(p.Code)
	if err != nil {
		return wrapErr(KindIO, "transform.decompress_program", err)
	}
	p.Code = plain
	p.BuildInfo.CompressedCodeEnd = 0
	return nil
}

// CompressProgram replaces p.Code with its LZ77-compressed form,
// leaving the first ARM9CompressionStart bytes (the secure area and
// self-decompression stub) uncompressed. A no-op when already
// compressed.
func CompressProgram(p *Program, version lz77.Version) error {
	if p.IsCompressed() {
		return nil
	}
	compressed, err := lz77.Compress(version, p.Code, ARM9CompressionStart)
	if err != nil {
		return wrapErr(KindIO, "transform.compress_program", err)
	}
	p.Code = compressed
	if p.BuildInfo != nil {
		p.BuildInfo.CompressedCodeEnd = p.BaseAddress + uint32(len(compressed))
	}
	return nil
}

// syncBuildInfoToCode writes p.BuildInfo's current field values back
// into p.Code at BuildInfoCodeOffset, keeping the two in sync after a
// caller mutates BuildInfo directly. Only valid while Code is
// plaintext: a still-compressed program's build info lives inside the
// compressed stream at whatever offset it had when last plaintext,
// which this package does not attempt to locate without decompressing
// (consistent with the "no patching compressed contents" non-goal).
func (p *Program) syncBuildInfoToCode() {
	if p.BuildInfo == nil || p.IsCompressed() {
		return
	}
	end := int(p.BuildInfoCodeOffset) + buildInfoSize
	if end > len(p.Code) {
		return
	}
	copy(p.Code[p.BuildInfoCodeOffset:end], p.BuildInfo.Bytes())
}

// DecompressOverlay replaces ov.Code with its LZ77-decompressed form,
// if the overlay entry marks it compressed.
func DecompressOverlay(ov *Overlay) error {
	if !ov.Entry.IsCompressed {
		return nil
	}
	plain, err := lz77.Decompress(ov.Code)
	if err != nil {
		return wrapErr(KindIO, "transform.decompress_overlay", err)
	}
	ov.Code = plain
	ov.Entry.IsCompressed = false
	ov.Entry.CompressedSize = 0
	return nil
}

// CompressOverlay replaces ov.Code with its LZ77-compressed form.
func CompressOverlay(ov *Overlay, version lz77.Version) error {
	if ov.Entry.IsCompressed {
		return nil
	}
	compressed, err := lz77.Compress(version, ov.Code, 0)
	if err != nil {
		return wrapErr(KindIO, "transform.compress_overlay", err)
	}
	ov.Code = compressed
	ov.Entry.IsCompressed = true
	ov.Entry.CompressedSize = uint32(len(compressed))
	return nil
}

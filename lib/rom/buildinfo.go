package rom

import (
	"encoding/binary"
	"math/bits"
)

// Nitrocode is the 32-bit magic terminating build info and marking the
// ARM9 footer.
const Nitrocode uint32 = 0xDEC00621

// NitrocodeComplement is the byte-swapped Nitrocode word that must
// immediately follow it in build info.
var NitrocodeComplement = bits.ReverseBytes32(Nitrocode)

const buildInfoSize = 32

// BuildInfo is the ARM9 (or ARM7) build metadata block, terminated by
// the Nitrocode/NitrocodeComplement pair.
type BuildInfo struct {
	AutoloadListStart uint32
	AutoloadListEnd   uint32
	AutoloadStart     uint32
	BssStart          uint32
	BssEnd            uint32
	CompressedCodeEnd uint32 // non-zero iff the program's code is LZ77-compressed
}

// ParseBuildInfo borrows a buildInfoSize-byte buffer, verifying the
// trailing nitrocode pair.
func ParseBuildInfo(b []byte) (*BuildInfo, error) {
	if len(b) < buildInfoSize {
		return nil, newErr(KindSizeMismatch, "buildinfo.parse",
			"need at least %d bytes, got %d", buildInfoSize, len(b))
	}
	if err := checkAlign(b, 4, "buildinfo.parse"); err != nil {
		return nil, err
	}

	bi := &BuildInfo{
		AutoloadListStart: binary.LittleEndian.Uint32(b[0:]),
		AutoloadListEnd:   binary.LittleEndian.Uint32(b[4:]),
		AutoloadStart:     binary.LittleEndian.Uint32(b[8:]),
		BssStart:          binary.LittleEndian.Uint32(b[12:]),
		BssEnd:            binary.LittleEndian.Uint32(b[16:]),
		CompressedCodeEnd: binary.LittleEndian.Uint32(b[20:]),
	}

	nitro := binary.LittleEndian.Uint32(b[24:])
	complement := binary.LittleEndian.Uint32(b[28:])
	if nitro != Nitrocode || complement != NitrocodeComplement {
		return nil, newErr(KindMagicMismatch, "buildinfo.parse",
			"nitrocode pair mismatch: got %#08x/%#08x", nitro, complement)
	}

	return bi, nil
}

// Bytes serializes bi into a fresh buildInfoSize-byte buffer.
func (bi *BuildInfo) Bytes() []byte {
	b := make([]byte, buildInfoSize)
	binary.LittleEndian.PutUint32(b[0:], bi.AutoloadListStart)
	binary.LittleEndian.PutUint32(b[4:], bi.AutoloadListEnd)
	binary.LittleEndian.PutUint32(b[8:], bi.AutoloadStart)
	binary.LittleEndian.PutUint32(b[12:], bi.BssStart)
	binary.LittleEndian.PutUint32(b[16:], bi.BssEnd)
	binary.LittleEndian.PutUint32(b[20:], bi.CompressedCodeEnd)
	binary.LittleEndian.PutUint32(b[24:], Nitrocode)
	binary.LittleEndian.PutUint32(b[28:], NitrocodeComplement)
	return b
}

// IsCompressed reports whether the program this build info belongs to
// carries LZ77-compressed code.
func (bi *BuildInfo) IsCompressed() bool { return bi.CompressedCodeEnd != 0 }

const arm9FooterSize = 12

// ARM9Footer optionally follows the ARM9 program code in the ROM image (§3).
type ARM9Footer struct {
	BuildInfoOffset         uint32
	OverlaySignaturesOffset uint32
}

// ParseARM9Footer borrows a 12-byte buffer, verifying the leading
// nitrocode word.
func ParseARM9Footer(b []byte) (*ARM9Footer, error) {
	if len(b) < arm9FooterSize {
		return nil, newErr(KindSizeMismatch, "arm9footer.parse",
			"need at least %d bytes, got %d", arm9FooterSize, len(b))
	}
	nitro := binary.LittleEndian.Uint32(b[0:])
	if nitro != Nitrocode {
		return nil, newErr(KindMagicMismatch, "arm9footer.parse", "nitrocode mismatch: got %#08x", nitro)
	}
	return &ARM9Footer{
		BuildInfoOffset:         binary.LittleEndian.Uint32(b[4:]),
		OverlaySignaturesOffset: binary.LittleEndian.Uint32(b[8:]),
	}, nil
}

// Bytes serializes f into a fresh 12-byte buffer.
func (f *ARM9Footer) Bytes() []byte {
	b := make([]byte, arm9FooterSize)
	binary.LittleEndian.PutUint32(b[0:], Nitrocode)
	binary.LittleEndian.PutUint32(b[4:], f.BuildInfoOffset)
	binary.LittleEndian.PutUint32(b[8:], f.OverlaySignaturesOffset)
	return b
}

// BuildInfoOffsetKind reports whether offset should be interpreted as
// an absolute ROM offset or an ARM9-relative one, per the §9 open
// question: absolute when it already lies past the program's own ROM
// offset, ARM9-relative otherwise. Both readings are preserved
// verbatim rather than normalized.
func BuildInfoOffsetKind(offset, arm9RomOffset uint32) (absolute bool) {
	return offset > arm9RomOffset
}

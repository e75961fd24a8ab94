// Package rom implements the raw view layer, the owned parsed model,
// the extractor, and the assembler for Nintendo DS ROM images.
//
// The package follows the teacher's header-parsing idiom: package
// level byte-offset constants, manual little-endian field access, and
// a parse entry point that returns a typed struct or a classified
// error. Unlike the teacher's read-only identify packages, this one
// also assembles a byte buffer back out of the parsed struct, since
// bit-exact rebuild is the whole point of this module.
package rom

import (
	"encoding/binary"

	"github.com/ndskit/ndspack/internal/util"
	"github.com/ndskit/ndspack/lib/lz77"
)

// HeaderSize is the fixed size of the NDS ROM header.
const HeaderSize = 0x4000

// Byte offsets of every header field. All multi-byte fields are
// little-endian.
const (
	offTitle            = 0x000
	offGameCode         = 0x00C
	offMakerCode        = 0x010
	offUnitCode         = 0x012
	offSeedSelect       = 0x013
	offCapacity         = 0x014
	offReserved1        = 0x015 // 7 bytes
	offRegion           = 0x01C
	offRomVersion       = 0x01D
	offAutostart        = 0x01E
	offARM9             = 0x020 // ProgramOffset, 16 bytes
	offARM7             = 0x030 // ProgramOffset, 16 bytes
	offFileNames        = 0x040 // TableOffset, 8 bytes
	offFileAllocs       = 0x048 // TableOffset, 8 bytes
	offARM9Overlay      = 0x050 // TableOffset, 8 bytes
	offARM7Overlay      = 0x058 // TableOffset, 8 bytes
	offNormalCardControl = 0x060
	offSecureCardControl = 0x064
	offBannerOffset     = 0x068
	offSecureAreaCRC    = 0x06C
	offSecureAreaDelay  = 0x06E
	offARM9AutoloadCB   = 0x070
	offARM7AutoloadCB   = 0x074
	offSecureAreaDisable = 0x078 // 8 bytes
	offRomSize          = 0x080
	offHeaderSize       = 0x084
	offReserved4        = 0x088 // 0x10 bytes
	offARM9BuildInfo    = 0x098
	offARM7BuildInfo    = 0x09C
	offReserved5        = 0x0A0 // pad to 0xC0
	offLogoBytes        = 0x0C0 // 0x9C bytes
	offLogoCRC          = 0x15C
	offHeaderCRC        = 0x15E

	// Post-DSi-era extension region: six 20-byte HMAC-SHA1 slots.
	offHMACARM9         = 0x160
	offHMACARM7         = 0x174
	offHMACDigestMaster = 0x188
	offHMACIconTitle    = 0x19C
	offHMACARM9Overlay  = 0x1B0
	offHMACARM7Overlay  = 0x1C4

	// rsaSignatureSize is the size of the RSA signature, which occupies
	// the last bytes of the header.
	rsaSignatureSize = 0x80
)

// unit codes gating version inference (§4.8 step 1).
const (
	unitCodeNDS       = 0x00
	unitCodeNDSAndDSi = 0x02
	unitCodeDSiOnly   = 0x03
)

// ProgramOffset describes where a processor program lives both in the
// ROM image and in memory.
type ProgramOffset struct {
	Offset   uint32
	Entry    uint32
	BaseAddr uint32
	Size     uint32
}

func parseProgramOffset(b []byte) ProgramOffset {
	return ProgramOffset{
		Offset:   binary.LittleEndian.Uint32(b[0:]),
		Entry:    binary.LittleEndian.Uint32(b[4:]),
		BaseAddr: binary.LittleEndian.Uint32(b[8:]),
		Size:     binary.LittleEndian.Uint32(b[12:]),
	}
}

func (p ProgramOffset) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], p.Offset)
	binary.LittleEndian.PutUint32(b[4:], p.Entry)
	binary.LittleEndian.PutUint32(b[8:], p.BaseAddr)
	binary.LittleEndian.PutUint32(b[12:], p.Size)
}

// TableOffset describes a flat table's location and byte size.
type TableOffset struct {
	Offset uint32
	Size   uint32
}

func parseTableOffset(b []byte) TableOffset {
	return TableOffset{
		Offset: binary.LittleEndian.Uint32(b[0:]),
		Size:   binary.LittleEndian.Uint32(b[4:]),
	}
}

func (t TableOffset) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], t.Offset)
	binary.LittleEndian.PutUint32(b[4:], t.Size)
}

// Header is the owned, mutable parsed representation of the 0x4000
// byte NDS ROM header.
type Header struct {
	Title      string
	GameCode   string
	MakerCode  string
	UnitCode   byte
	SeedSelect byte
	Capacity   byte
	Region     byte
	RomVersion byte
	Autostart  byte

	ARM9 ProgramOffset
	ARM7 ProgramOffset

	FileNames   TableOffset
	FileAllocs  TableOffset
	ARM9Overlay TableOffset
	ARM7Overlay TableOffset

	NormalCardControl uint32
	SecureCardControl uint32
	BannerOffset      uint32
	SecureAreaCRC     uint16
	SecureAreaDelay   uint16
	ARM9AutoloadCB    uint32
	ARM7AutoloadCB    uint32

	RomSize    uint32
	HeaderSize uint32

	ARM9BuildInfoOffset uint32
	ARM7BuildInfoOffset uint32

	LogoBytes [0x9C]byte
	LogoCRC   uint16
	HeaderCRC uint16

	// HMACs and RSASignature are read and written only when Version is
	// VersionPostDSi; for other versions ParseHeader leaves them zero
	// and Bytes writes zeros in their place. They are kept as opaque
	// bytes (§1 Non-goals: no RSA verification).
	HMACARM9         [20]byte
	HMACARM7         [20]byte
	HMACDigestMaster [20]byte
	HMACIconTitle    [20]byte
	HMACARM9Overlay  [20]byte
	HMACARM7Overlay  [20]byte
	RSASignature     [rsaSignatureSize]byte
}

// Version reports the header's inferred format era, gating the LZ77
// block-trim predicate and presence of the post-DSi signature fields.
func (h *Header) Version() lz77.Version {
	if h.UnitCode == unitCodeNDSAndDSi || h.UnitCode == unitCodeDSiOnly {
		return lz77.VersionPostDSi
	}
	return lz77.VersionOriginal
}

// ParseHeader borrows a HeaderSize-byte buffer and copies it into an
// owned Header.
func ParseHeader(b []byte) (*Header, error) {
	if len(b) != HeaderSize {
		return nil, newErr(KindSizeMismatch, "header.parse",
			"header must be exactly %d bytes, got %d", HeaderSize, len(b))
	}

	h := &Header{
		Title:      util.ExtractASCII(b[offTitle : offTitle+12]),
		GameCode:   util.ExtractASCII(b[offGameCode : offGameCode+4]),
		MakerCode:  util.ExtractASCII(b[offMakerCode : offMakerCode+2]),
		UnitCode:   b[offUnitCode],
		SeedSelect: b[offSeedSelect],
		Capacity:   b[offCapacity],
		Region:     b[offRegion],
		RomVersion: b[offRomVersion],
		Autostart:  b[offAutostart],

		ARM9: parseProgramOffset(b[offARM9:]),
		ARM7: parseProgramOffset(b[offARM7:]),

		FileNames:   parseTableOffset(b[offFileNames:]),
		FileAllocs:  parseTableOffset(b[offFileAllocs:]),
		ARM9Overlay: parseTableOffset(b[offARM9Overlay:]),
		ARM7Overlay: parseTableOffset(b[offARM7Overlay:]),

		NormalCardControl: binary.LittleEndian.Uint32(b[offNormalCardControl:]),
		SecureCardControl: binary.LittleEndian.Uint32(b[offSecureCardControl:]),
		BannerOffset:      binary.LittleEndian.Uint32(b[offBannerOffset:]),
		SecureAreaCRC:     binary.LittleEndian.Uint16(b[offSecureAreaCRC:]),
		SecureAreaDelay:   binary.LittleEndian.Uint16(b[offSecureAreaDelay:]),
		ARM9AutoloadCB:    binary.LittleEndian.Uint32(b[offARM9AutoloadCB:]),
		ARM7AutoloadCB:    binary.LittleEndian.Uint32(b[offARM7AutoloadCB:]),

		RomSize:    binary.LittleEndian.Uint32(b[offRomSize:]),
		HeaderSize: binary.LittleEndian.Uint32(b[offHeaderSize:]),

		ARM9BuildInfoOffset: binary.LittleEndian.Uint32(b[offARM9BuildInfo:]),
		ARM7BuildInfoOffset: binary.LittleEndian.Uint32(b[offARM7BuildInfo:]),

		LogoCRC:   binary.LittleEndian.Uint16(b[offLogoCRC:]),
		HeaderCRC: binary.LittleEndian.Uint16(b[offHeaderCRC:]),
	}
	copy(h.LogoBytes[:], b[offLogoBytes:offLogoBytes+0x9C])

	if h.Version() == lz77.VersionPostDSi {
		copy(h.HMACARM9[:], b[offHMACARM9:])
		copy(h.HMACARM7[:], b[offHMACARM7:])
		copy(h.HMACDigestMaster[:], b[offHMACDigestMaster:])
		copy(h.HMACIconTitle[:], b[offHMACIconTitle:])
		copy(h.HMACARM9Overlay[:], b[offHMACARM9Overlay:])
		copy(h.HMACARM7Overlay[:], b[offHMACARM7Overlay:])
		copy(h.RSASignature[:], b[HeaderSize-rsaSignatureSize:])
	}

	return h, nil
}

// Bytes serializes h into a fresh HeaderSize-byte buffer. HeaderCRC is
// written as h.HeaderCRC verbatim; callers that want a self-consistent
// checksum must recompute it (see RecomputeHeaderCRC) before calling
// Bytes.
func (h *Header) Bytes() []byte {
	b := make([]byte, HeaderSize)

	util.PadASCII(b[offTitle:offTitle+12], h.Title)
	util.PadASCII(b[offGameCode:offGameCode+4], h.GameCode)
	util.PadASCII(b[offMakerCode:offMakerCode+2], h.MakerCode)
	b[offUnitCode] = h.UnitCode
	b[offSeedSelect] = h.SeedSelect
	b[offCapacity] = h.Capacity
	b[offRegion] = h.Region
	b[offRomVersion] = h.RomVersion
	b[offAutostart] = h.Autostart

	h.ARM9.put(b[offARM9:])
	h.ARM7.put(b[offARM7:])

	h.FileNames.put(b[offFileNames:])
	h.FileAllocs.put(b[offFileAllocs:])
	h.ARM9Overlay.put(b[offARM9Overlay:])
	h.ARM7Overlay.put(b[offARM7Overlay:])

	binary.LittleEndian.PutUint32(b[offNormalCardControl:], h.NormalCardControl)
	binary.LittleEndian.PutUint32(b[offSecureCardControl:], h.SecureCardControl)
	binary.LittleEndian.PutUint32(b[offBannerOffset:], h.BannerOffset)
	binary.LittleEndian.PutUint16(b[offSecureAreaCRC:], h.SecureAreaCRC)
	binary.LittleEndian.PutUint16(b[offSecureAreaDelay:], h.SecureAreaDelay)
	binary.LittleEndian.PutUint32(b[offARM9AutoloadCB:], h.ARM9AutoloadCB)
	binary.LittleEndian.PutUint32(b[offARM7AutoloadCB:], h.ARM7AutoloadCB)

	binary.LittleEndian.PutUint32(b[offRomSize:], h.RomSize)
	binary.LittleEndian.PutUint32(b[offHeaderSize:], h.HeaderSize)

	binary.LittleEndian.PutUint32(b[offARM9BuildInfo:], h.ARM9BuildInfoOffset)
	binary.LittleEndian.PutUint32(b[offARM7BuildInfo:], h.ARM7BuildInfoOffset)

	copy(b[offLogoBytes:offLogoBytes+0x9C], h.LogoBytes[:])
	binary.LittleEndian.PutUint16(b[offLogoCRC:], h.LogoCRC)
	binary.LittleEndian.PutUint16(b[offHeaderCRC:], h.HeaderCRC)

	if h.Version() == lz77.VersionPostDSi {
		copy(b[offHMACARM9:], h.HMACARM9[:])
		copy(b[offHMACARM7:], h.HMACARM7[:])
		copy(b[offHMACDigestMaster:], h.HMACDigestMaster[:])
		copy(b[offHMACIconTitle:], h.HMACIconTitle[:])
		copy(b[offHMACARM9Overlay:], h.HMACARM9Overlay[:])
		copy(b[offHMACARM7Overlay:], h.HMACARM7Overlay[:])
		copy(b[HeaderSize-rsaSignatureSize:], h.RSASignature[:])
	}

	return b
}

// RecomputeHeaderCRC recomputes and stores HeaderCRC from the
// serialized form of every field preceding it (§3, §8 invariant 6).
func (h *Header) RecomputeHeaderCRC(crc func([]byte) uint16) {
	b := h.Bytes()
	h.HeaderCRC = crc(b[:offHeaderCRC])
}

// CapacityForSize returns the smallest capacity exponent c such that
// size fits within the threshold it encodes (§4.9).
func CapacityForSize(size uint32) byte {
	threshold := func(c int) uint64 {
		if c <= 2 {
			return uint64(128*1024) << uint(c)
		}
		return uint64(1024*1024) << uint(c-3)
	}
	for c := 0; c < 0xFF; c++ {
		if uint64(size) <= threshold(c) {
			return byte(c)
		}
	}
	return 0xFF
}

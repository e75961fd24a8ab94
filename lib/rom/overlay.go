package rom

import (
	"encoding/binary"

	"github.com/ndskit/ndspack/lib/hmacsha1"
)

const overlayEntrySize = 32

// overlay flags bit layout within the packed 32-bit Flags word.
const (
	overlayCompressedSizeMask = 0x00FFFFFF
	overlayIsCompressedBit    = 1 << 24
	overlayIsSignedBit        = 1 << 25
)

// OverlayEntry is one row of an ARM9 or ARM7 overlay table (§3). Its
// payload bytes live in the file image addressed by FileID in the FAT,
// not inline in the table.
type OverlayEntry struct {
	ID             uint32
	BaseAddr       uint32
	CodeSize       uint32
	BssSize        uint32
	CtorStart      uint32
	CtorEnd        uint32
	FileID         uint32
	CompressedSize uint32
	IsCompressed   bool
	IsSigned       bool
}

func parseOverlayEntry(b []byte) OverlayEntry {
	flags := binary.LittleEndian.Uint32(b[28:])
	return OverlayEntry{
		ID:             binary.LittleEndian.Uint32(b[0:]),
		BaseAddr:       binary.LittleEndian.Uint32(b[4:]),
		CodeSize:       binary.LittleEndian.Uint32(b[8:]),
		BssSize:        binary.LittleEndian.Uint32(b[12:]),
		CtorStart:      binary.LittleEndian.Uint32(b[16:]),
		CtorEnd:        binary.LittleEndian.Uint32(b[20:]),
		FileID:         binary.LittleEndian.Uint32(b[24:]),
		CompressedSize: flags & overlayCompressedSizeMask,
		IsCompressed:   flags&overlayIsCompressedBit != 0,
		IsSigned:       flags&overlayIsSignedBit != 0,
	}
}

func (e OverlayEntry) put(b []byte) {
	binary.LittleEndian.PutUint32(b[0:], e.ID)
	binary.LittleEndian.PutUint32(b[4:], e.BaseAddr)
	binary.LittleEndian.PutUint32(b[8:], e.CodeSize)
	binary.LittleEndian.PutUint32(b[12:], e.BssSize)
	binary.LittleEndian.PutUint32(b[16:], e.CtorStart)
	binary.LittleEndian.PutUint32(b[20:], e.CtorEnd)
	binary.LittleEndian.PutUint32(b[24:], e.FileID)

	flags := e.CompressedSize & overlayCompressedSizeMask
	if e.IsCompressed {
		flags |= overlayIsCompressedBit
	}
	if e.IsSigned {
		flags |= overlayIsSignedBit
	}
	binary.LittleEndian.PutUint32(b[28:], flags)
}

// ParseOverlayTable parses a flat array of OverlayEntry rows.
func ParseOverlayTable(b []byte) ([]OverlayEntry, error) {
	if len(b)%overlayEntrySize != 0 {
		return nil, newErr(KindSizeMismatch, "overlay.parse",
			"overlay table length %d is not a multiple of %d", len(b), overlayEntrySize)
	}
	if err := checkAlign(b, 4, "overlay.parse"); err != nil {
		return nil, err
	}
	out := make([]OverlayEntry, len(b)/overlayEntrySize)
	for i := range out {
		out[i] = parseOverlayEntry(b[i*overlayEntrySize:])
	}
	return out, nil
}

// OverlayTableBytes serializes a whole overlay table.
func OverlayTableBytes(entries []OverlayEntry) []byte {
	b := make([]byte, len(entries)*overlayEntrySize)
	for i, e := range entries {
		e.put(b[i*overlayEntrySize:])
	}
	return b
}

// Overlay is an owned overlay entry plus its (possibly still
// LZ77-compressed) code bytes, as held by a Parsed ROM.
type Overlay struct {
	Entry OverlayEntry
	Code  []byte
}

// OverlaySignaturesBytes computes the per-overlay HMAC-SHA1 signature
// table addressed by ARM9Footer.OverlaySignaturesOffset: HMAC(code)
// for each overlay in order, as a flat array of hmacsha1.Size-byte
// digests (§4.5, distinct from the overlay table's own signature).
func OverlaySignaturesBytes(overlays []Overlay, hmacKey []byte) []byte {
	b := make([]byte, len(overlays)*hmacsha1.Size)
	for i, ov := range overlays {
		sig := hmacsha1.Sign(hmacKey, ov.Code)
		copy(b[i*hmacsha1.Size:], sig[:])
	}
	return b
}

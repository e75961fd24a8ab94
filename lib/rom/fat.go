package rom

import "encoding/binary"

const fatEntrySize = 8

// FATEntry delimits one file's byte range within the ROM image,
// exclusive end (§3).
type FATEntry struct {
	Start uint32
	End   uint32
}

// Size returns the file's length in bytes.
func (e FATEntry) Size() uint32 { return e.End - e.Start }

// ParseFAT parses the flat file allocation table, indexed by file ID.
func ParseFAT(b []byte) ([]FATEntry, error) {
	if len(b)%fatEntrySize != 0 {
		return nil, newErr(KindSizeMismatch, "fat.parse",
			"FAT length %d is not a multiple of %d", len(b), fatEntrySize)
	}
	if err := checkAlign(b, 4, "fat.parse"); err != nil {
		return nil, err
	}
	out := make([]FATEntry, len(b)/fatEntrySize)
	for i := range out {
		e := b[i*fatEntrySize:]
		out[i] = FATEntry{
			Start: binary.LittleEndian.Uint32(e[0:]),
			End:   binary.LittleEndian.Uint32(e[4:]),
		}
	}
	return out, nil
}

// FATBytes serializes the whole FAT.
func FATBytes(entries []FATEntry) []byte {
	b := make([]byte, len(entries)*fatEntrySize)
	for i, e := range entries {
		o := b[i*fatEntrySize:]
		binary.LittleEndian.PutUint32(o[0:], e.Start)
		binary.LittleEndian.PutUint32(o[4:], e.End)
	}
	return b
}

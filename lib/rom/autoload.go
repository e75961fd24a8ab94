package rom

import "encoding/binary"

// AutoloadKind classifies an autoload block by its base address.
type AutoloadKind int

const (
	AutoloadUnknown AutoloadKind = iota
	AutoloadITCM
	AutoloadDTCM
)

func (k AutoloadKind) String() string {
	switch k {
	case AutoloadITCM:
		return "ITCM"
	case AutoloadDTCM:
		return "DTCM"
	default:
		return "Unknown"
	}
}

// Base addresses that classify an autoload block (§3).
const (
	itcmBaseAddress uint32 = 0x01FF8000
	dtcmBaseAddress uint32 = 0x027E0000
)

const autoloadInfoSize = 12

// AutoloadInfo is one entry of the autoload-info table referenced by a
// program's build info (AutoloadListStart..AutoloadListEnd).
type AutoloadInfo struct {
	BaseAddress uint32
	CodeSize    uint32
	BssSize     uint32
}

// Kind classifies this entry by BaseAddress.
func (a AutoloadInfo) Kind() AutoloadKind {
	switch a.BaseAddress {
	case itcmBaseAddress:
		return AutoloadITCM
	case dtcmBaseAddress:
		return AutoloadDTCM
	default:
		return AutoloadUnknown
	}
}

// ParseAutoloadInfoTable parses a flat array of AutoloadInfo entries.
func ParseAutoloadInfoTable(b []byte) ([]AutoloadInfo, error) {
	if len(b)%autoloadInfoSize != 0 {
		return nil, newErr(KindSizeMismatch, "autoload.parse",
			"autoload-info table length %d is not a multiple of %d", len(b), autoloadInfoSize)
	}
	out := make([]AutoloadInfo, len(b)/autoloadInfoSize)
	for i := range out {
		e := b[i*autoloadInfoSize:]
		out[i] = AutoloadInfo{
			BaseAddress: binary.LittleEndian.Uint32(e[0:]),
			CodeSize:    binary.LittleEndian.Uint32(e[4:]),
			BssSize:     binary.LittleEndian.Uint32(e[8:]),
		}
	}
	return out, nil
}

// AutoloadInfoTableBytes serializes a whole autoload-info table.
func AutoloadInfoTableBytes(infos []AutoloadInfo) []byte {
	b := make([]byte, len(infos)*autoloadInfoSize)
	for i, a := range infos {
		e := b[i*autoloadInfoSize:]
		binary.LittleEndian.PutUint32(e[0:], a.BaseAddress)
		binary.LittleEndian.PutUint32(e[4:], a.CodeSize)
		binary.LittleEndian.PutUint32(e[8:], a.BssSize)
	}
	return b
}

// AutoloadBlock is an owned autoload's info plus its code bytes, as
// held by a Parsed ROM (§3: ITCM, DTCM, or unknown autoloads).
type AutoloadBlock struct {
	Info AutoloadInfo
	Code []byte
}

// Kind classifies the block by its info's BaseAddress.
func (b AutoloadBlock) Kind() AutoloadKind { return b.Info.Kind() }

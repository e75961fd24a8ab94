package logo

import (
	"fmt"

	"github.com/ndskit/ndspack/lib/bitio"
)

// codeEntry is one nibble's fixed Huffman code.
type codeEntry struct {
	code   uint16
	length uint8
}

// nibbleCodes is the fixed 16-entry canonical Huffman table, built once
// (see init) from the length distribution {1:1, 2:1, 5:2, 6:12}, chosen
// so that the common low-nibble value produced by diff16 on a mostly
// uniform logo gets the shortest code.
var nibbleCodes [16]codeEntry

func init() {
	lengths := [16]uint8{1, 2, 5, 5, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6}
	var code uint16
	prevLen := lengths[0]
	for sym, length := range lengths {
		code <<= uint(length - prevLen)
		nibbleCodes[sym] = codeEntry{code: code, length: length}
		code++
		prevLen = length
	}
}

func encodeNibble(w *bitio.Writer, nibble byte) {
	entry := nibbleCodes[nibble]
	w.WriteBits(uint32(entry.code), uint32(entry.length))
}

func decodeNibble(r *bitio.Reader) (byte, error) {
	var code uint16
	for length := uint8(1); length <= 6; length++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | uint16(bit)
		for sym, entry := range nibbleCodes {
			if entry.length == length && entry.code == code {
				return byte(sym), nil
			}
		}
	}
	return 0, fmt.Errorf("invalid huffman code")
}

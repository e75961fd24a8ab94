package cli

import (
	"fmt"
	"os"

	"github.com/ndskit/ndspack/lib/blowfish"
)

// blowfishKeyOffset and the key blob's size together define the
// Blowfish key source: the first 0x1048 bytes starting at offset 0x30
// of an ARM7 BIOS file.
const blowfishKeyOffset = 0x30

// loadBlowfishKey reads the key blob out of an ARM7 BIOS file. A
// missing --bios/NDSPACK_BIOS is not an error here: without a key,
// rom.Extract leaves an encrypted secure area encrypted and rom.Assemble
// writes the secure area as it is with a zero secure-area CRC; neither
// returns a BlowfishKeyNeeded error.
func loadBlowfishKey() ([]byte, error) {
	path := resolveBiosPath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading BIOS file %s: %w", path, err)
	}
	if len(data) < blowfishKeyOffset+blowfish.KeyBlobSize {
		return nil, fmt.Errorf("BIOS file %s is too short: need at least %d bytes, got %d",
			path, blowfishKeyOffset+blowfish.KeyBlobSize, len(data))
	}
	key := make([]byte, blowfish.KeyBlobSize)
	copy(key, data[blowfishKeyOffset:blowfishKeyOffset+blowfish.KeyBlobSize])
	return key, nil
}

package rom

import "github.com/ndskit/ndspack/lib/blowfish"

// Program is the owned representation of either processor's code
// (§3). ARM7 programs never carry a footer; ARM9 programs optionally
// do.
type Program struct {
	BaseAddress      uint32
	Entry            uint32
	BuildInfoOffset  uint32
	AutoloadCallback uint32

	Code      []byte
	BuildInfo *BuildInfo
	Footer    *ARM9Footer // ARM9 only

	// BuildInfoCodeOffset is BuildInfo's byte offset within Code,
	// valid only while Code is in its plaintext (uncompressed) form;
	// set at extraction and used to patch BuildInfo's mutated fields
	// back into Code before assembly.
	BuildInfoCodeOffset uint32
}

// IsCompressed reports whether Code is still LZ77-compressed.
func (p *Program) IsCompressed() bool {
	return p.BuildInfo != nil && p.BuildInfo.IsCompressed()
}

// SecureAreaSize is re-exported from lib/blowfish's constant for
// callers that only import lib/rom.
const SecureAreaSize = blowfish.SecureAreaSize

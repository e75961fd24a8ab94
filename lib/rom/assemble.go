package rom

import (
	"github.com/ndskit/ndspack/lib/blowfish"
	"github.com/ndskit/ndspack/lib/crc16"
	"github.com/ndskit/ndspack/lib/hmacsha1"
	"github.com/ndskit/ndspack/lib/logo"
)

// defaultAlignment is the alignment Assemble uses for every section
// and every file (§6); AssembleOptions has no field to change it.
const defaultAlignment = 0x200

// defaultPadding is the byte sections are padded with between their
// content and the next aligned boundary (§3).
const defaultPadding = 0xFF

// AssembleOptions configures Assemble's back-patching and
// cryptographic behavior (§4.9, §6).
type AssembleOptions struct {
	// BlowfishKey, if non-nil, lets Assemble compute the secure-area
	// CRC and (if Encrypt is set) encrypt a currently-plaintext secure
	// area. Left zero otherwise.
	BlowfishKey []byte
	// Encrypt forces the ARM9 secure area to ciphertext on emit, if
	// currently plaintext and BlowfishKey is set.
	Encrypt bool
	// HMACKey, if non-nil, signs overlay tables marked IsSigned and
	// computes the per-overlay signature table addressed by the ARM9
	// footer's OverlaySignaturesOffset, when an ARM9 footer is present.
	HMACKey []byte
	// PathOrder lists file paths (as component slices, matching Walk's
	// path argument) in the order their contents should be emitted to
	// the file image block. A nil PathOrder falls back to file-tree
	// traversal order.
	PathOrder [][]string
	// FileImagePaddingValue fills the gaps between file entries.
	// Zero value defaults to 0xFF.
	FileImagePaddingValue byte
}

// Assemble serializes r into a fresh ROM image (§4.9).
func Assemble(r *ROM, opts AssembleOptions) ([]byte, error) {
	padValue := opts.FileImagePaddingValue
	if padValue == 0 {
		padValue = defaultPadding
	}

	if err := prepareSecureArea(r, opts); err != nil {
		return nil, err
	}
	r.ARM9.syncBuildInfoToCode()
	r.ARM7.syncBuildInfoToCode()

	fat, files, err := layoutFiles(r, opts.PathOrder)
	if err != nil {
		return nil, err
	}

	arm9OvtBytes := OverlayTableBytes(entriesOf(r.ARM9Overlays))
	arm7OvtBytes := OverlayTableBytes(entriesOf(r.ARM7Overlays))
	fntBytes := FNTBytes(r.Files)
	fatBytes := FATBytes(fat)

	var arm9SigBytes []byte
	if opts.HMACKey != nil && len(r.ARM9Overlays) > 0 {
		arm9SigBytes = OverlaySignaturesBytes(r.ARM9Overlays, opts.HMACKey)
	}

	var bannerBytes []byte
	if r.Banner != nil {
		r.Banner.RecomputeCRCs(crc16.Checksum)
		bannerBytes = r.Banner.Bytes()
	}

	w := newSectionWriter(defaultPadding)
	w.reserve(HeaderSize) // header, back-patched last

	arm9Off := w.place(r.ARM9.Code, defaultAlignment)
	var footerOff uint32
	if r.ARM9.Footer != nil {
		footerOff = w.place(r.ARM9.Footer.Bytes(), 1)
	}
	var arm9SigOff uint32
	if arm9SigBytes != nil {
		arm9SigOff = w.place(arm9SigBytes, defaultAlignment)
	}
	arm9OvtOff := w.place(arm9OvtBytes, defaultAlignment)
	arm7Off := w.place(r.ARM7.Code, defaultAlignment)
	arm7OvtOff := w.place(arm7OvtBytes, defaultAlignment)
	fntOff := w.place(fntBytes, defaultAlignment)
	fatOff := w.place(fatBytes, defaultAlignment)
	var bannerOff uint32
	if bannerBytes != nil {
		bannerOff = w.place(bannerBytes, defaultAlignment)
	}

	w.align(defaultAlignment)
	w.pad = padValue
	for _, f := range files {
		w.align(defaultAlignment)
		f.start = w.offset()
		w.place(f.contents, 1)
		f.end = w.offset()
	}
	for _, f := range files {
		fat[f.fileID] = FATEntry{Start: f.start, End: f.end}
	}
	fatBytes = FATBytes(fat)
	copy(w.buf[fatOff:], fatBytes)

	h := r.Header
	h.ARM9.Offset = arm9Off
	h.ARM9.Size = uint32(len(r.ARM9.Code))
	h.ARM9.Entry = r.ARM9.Entry
	h.ARM9.BaseAddr = r.ARM9.BaseAddress
	h.ARM7.Offset = arm7Off
	h.ARM7.Size = uint32(len(r.ARM7.Code))
	h.ARM7.Entry = r.ARM7.Entry
	h.ARM7.BaseAddr = r.ARM7.BaseAddress

	if r.ARM9.BuildInfo != nil && !r.ARM9.IsCompressed() {
		h.ARM9BuildInfoOffset = arm9Off + r.ARM9.BuildInfoCodeOffset
	}
	if r.ARM7.BuildInfo != nil && !r.ARM7.IsCompressed() {
		h.ARM7BuildInfoOffset = arm7Off + r.ARM7.BuildInfoCodeOffset
	}
	if r.ARM9.Footer != nil {
		r.ARM9.Footer.BuildInfoOffset = h.ARM9BuildInfoOffset
		if arm9SigBytes != nil {
			r.ARM9.Footer.OverlaySignaturesOffset = arm9SigOff
		}
		copy(w.buf[footerOff:], r.ARM9.Footer.Bytes())
	}

	h.ARM9Overlay = TableOffset{Offset: arm9OvtOff, Size: uint32(len(arm9OvtBytes))}
	h.ARM7Overlay = TableOffset{Offset: arm7OvtOff, Size: uint32(len(arm7OvtBytes))}
	h.FileNames = TableOffset{Offset: fntOff, Size: uint32(len(fntBytes))}
	h.FileAllocs = TableOffset{Offset: fatOff, Size: uint32(len(fatBytes))}
	h.BannerOffset = bannerOff
	h.ARM9AutoloadCB = r.ARM9.AutoloadCallback
	h.ARM7AutoloadCB = r.ARM7.AutoloadCallback

	h.RomSize = w.offset()
	h.HeaderSize = HeaderSize
	h.Capacity = CapacityForSize(h.RomSize)

	h.LogoBytes, err = logo.EncodeHeaderSlot(r.HeaderLogo)
	if err != nil {
		return nil, wrapErr(KindInvalidImage, "assemble.logo", err)
	}
	h.LogoCRC = crc16.Checksum(h.LogoBytes[:])

	if opts.BlowfishKey != nil {
		h.SecureAreaCRC = crc16.Checksum(r.ARM9.Code[:SecureAreaSize])
	} else {
		h.SecureAreaCRC = 0
	}

	if err := signOverlayTables(r, opts.HMACKey); err != nil {
		return nil, err
	}

	h.RecomputeHeaderCRC(crc16.Checksum)
	copy(w.buf[:HeaderSize], h.Bytes())

	return w.buf, nil
}

func prepareSecureArea(r *ROM, opts AssembleOptions) error {
	if opts.BlowfishKey == nil || !opts.Encrypt {
		return nil
	}
	if blowfish.IsEncrypted(r.ARM9.Code) {
		return nil
	}
	seed := blowfish.SeedFromGameCode(gameCodeBytes(r.Header.GameCode))
	if err := blowfish.EncryptSecureArea(r.ARM9.Code, opts.BlowfishKey, seed); err != nil {
		return wrapErr(KindMagicMismatch, "assemble.securearea", err)
	}
	return nil
}

func signOverlayTables(r *ROM, hmacKey []byte) error {
	if hmacKey == nil {
		return nil
	}
	if overlayTableSigned(r.ARM9Overlays) {
		sig := hmacsha1.Sign(hmacKey, OverlayTableBytes(entriesOf(r.ARM9Overlays)))
		copy(r.Header.HMACARM9Overlay[:], sig[:])
	}
	if overlayTableSigned(r.ARM7Overlays) {
		sig := hmacsha1.Sign(hmacKey, OverlayTableBytes(entriesOf(r.ARM7Overlays)))
		copy(r.Header.HMACARM7Overlay[:], sig[:])
	}
	return nil
}

func overlayTableSigned(overlays []Overlay) bool {
	for _, ov := range overlays {
		if ov.Entry.IsSigned {
			return true
		}
	}
	return false
}

func entriesOf(overlays []Overlay) []OverlayEntry {
	out := make([]OverlayEntry, len(overlays))
	for i, ov := range overlays {
		out[i] = ov.Entry
	}
	return out
}

type fileSlot struct {
	fileID   uint32
	contents []byte
	start    uint32
	end      uint32
}

// layoutFiles builds the FAT (sized to cover every file id used by the
// tree and both overlay tables) and the ordered list of file image
// block entries: named files in path order (or tree order, when no
// explicit order is given), followed by every overlay's code payload.
func layoutFiles(r *ROM, order [][]string) ([]FATEntry, []*fileSlot, error) {
	maxID := uint32(0)
	bump := func(id uint32) {
		if id+1 > maxID {
			maxID = id + 1
		}
	}

	var slots []*fileSlot
	if order != nil {
		byPath := map[string]*fileSlot{}
		r.Walk(func(path []string, node *FileTreeNode) {
			if !node.IsDir {
				byPath[joinPath(path)] = &fileSlot{fileID: node.FileID, contents: node.Contents}
				bump(node.FileID)
			}
		})
		for _, path := range order {
			s, ok := byPath[joinPath(path)]
			if !ok {
				return nil, nil, newErr(KindIO, "assemble.fileorder", "path order references unknown path %v", path)
			}
			slots = append(slots, s)
		}
	} else {
		r.Walk(func(_ []string, node *FileTreeNode) {
			if node.IsDir {
				return
			}
			bump(node.FileID)
			slots = append(slots, &fileSlot{fileID: node.FileID, contents: node.Contents})
		})
	}

	for _, ov := range r.AllOverlays() {
		bump(ov.Entry.FileID)
		slots = append(slots, &fileSlot{fileID: ov.Entry.FileID, contents: ov.Code})
	}

	return make([]FATEntry, maxID), slots, nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += "/"
		}
		out += p
	}
	return out
}

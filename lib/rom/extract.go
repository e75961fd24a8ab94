package rom

import (
	"github.com/ndskit/ndspack/lib/blowfish"
	"github.com/ndskit/ndspack/lib/logo"
)

// ExtractOptions configures Extract's optional side effects.
type ExtractOptions struct {
	// BlowfishKey, if non-nil, is the ARM7 BIOS key blob
	// (blowfish.KeyBlobSize bytes). When set and the ARM9 secure area
	// is encrypted, Extract decrypts it in place (§4.8 step 7).
	BlowfishKey []byte
}

// Extract parses a raw ROM image into an owned ROM (§4.8).
func Extract(raw []byte, opts ExtractOptions) (*ROM, error) {
	if len(raw) < HeaderSize {
		return nil, newErr(KindSizeMismatch, "extract.header", "ROM shorter than header size %d", HeaderSize)
	}
	header, err := ParseHeader(raw[:HeaderSize])
	if err != nil {
		return nil, err
	}

	r := &ROM{Header: header}

	bmp, err := logo.DecodeHeaderSlot(header.LogoBytes)
	if err != nil {
		return nil, wrapErr(KindMagicMismatch, "extract.logo", err)
	}
	r.HeaderLogo = bmp

	arm9, err := extractProgram(raw, header, header.ARM9, header.ARM9BuildInfoOffset, true)
	if err != nil {
		return nil, err
	}
	r.ARM9 = arm9

	arm7, err := extractProgram(raw, header, header.ARM7, header.ARM7BuildInfoOffset, false)
	if err != nil {
		return nil, err
	}
	r.ARM7 = arm7

	if arm9.BuildInfo != nil {
		autoloads, err := extractAutoloads(raw, arm9.BuildInfo)
		if err != nil {
			return nil, err
		}
		for i := range autoloads {
			switch autoloads[i].Kind() {
			case AutoloadITCM:
				r.ITCM = &autoloads[i]
			case AutoloadDTCM:
				r.DTCM = &autoloads[i]
			default:
				r.UnknownAutoloads = append(r.UnknownAutoloads, autoloads[i])
			}
		}
	}

	fat, err := extractFAT(raw, header)
	if err != nil {
		return nil, err
	}

	r.ARM9Overlays, err = extractOverlays(raw, header.ARM9Overlay, fat)
	if err != nil {
		return nil, err
	}
	r.ARM7Overlays, err = extractOverlays(raw, header.ARM7Overlay, fat)
	if err != nil {
		return nil, err
	}

	r.Files, err = extractFileTree(raw, header, fat)
	if err != nil {
		return nil, err
	}

	if header.BannerOffset != 0 {
		if int(header.BannerOffset) >= len(raw) {
			return nil, newErr(KindSizeMismatch, "extract.banner", "banner offset past end of ROM")
		}
		r.Banner, err = ParseBanner(raw[header.BannerOffset:])
		if err != nil {
			return nil, err
		}
	}

	if opts.BlowfishKey != nil && blowfish.IsEncrypted(r.ARM9.Code) {
		seed := blowfish.SeedFromGameCode(gameCodeBytes(header.GameCode))
		if err := blowfish.DecryptSecureArea(r.ARM9.Code, opts.BlowfishKey, seed); err != nil {
			return nil, wrapErr(KindMagicMismatch, "extract.securearea", err)
		}
	}

	return r, nil
}

func gameCodeBytes(s string) [4]byte {
	var b [4]byte
	copy(b[:], s)
	return b
}

func sliceRange(raw []byte, off, size uint32, op string) ([]byte, error) {
	end := uint64(off) + uint64(size)
	if end > uint64(len(raw)) {
		return nil, newErr(KindSizeMismatch, op, "section [%d, %d) runs past end of ROM (%d bytes)", off, end, len(raw))
	}
	return raw[off:end], nil
}

func extractProgram(raw []byte, header *Header, po ProgramOffset, buildInfoOffset uint32, isARM9 bool) (*Program, error) {
	code, err := sliceRange(raw, po.Offset, po.Size, "extract.program")
	if err != nil {
		return nil, err
	}

	p := &Program{
		BaseAddress:     po.BaseAddr,
		Entry:           po.Entry,
		BuildInfoOffset: buildInfoOffset,
		Code:            append([]byte(nil), code...),
	}

	absolute := BuildInfoOffsetKind(buildInfoOffset, po.Offset)
	abs := buildInfoOffset
	if !absolute {
		abs = po.Offset + buildInfoOffset
	}
	if bi, err := sliceRange(raw, abs, buildInfoSize, "extract.buildinfo"); err == nil {
		if parsed, err := ParseBuildInfo(bi); err == nil {
			p.BuildInfo = parsed
			p.BuildInfoCodeOffset = abs - po.Offset
		}
	}

	if isARM9 {
		footerOff := po.Offset + po.Size
		if fb, err := sliceRange(raw, footerOff, arm9FooterSize, "extract.arm9footer"); err == nil {
			if footer, err := ParseARM9Footer(fb); err == nil {
				p.Footer = footer
			}
		}
	}

	return p, nil
}

func extractAutoloads(raw []byte, bi *BuildInfo) ([]AutoloadBlock, error) {
	if bi.AutoloadListEnd < bi.AutoloadListStart {
		return nil, newErr(KindSizeMismatch, "extract.autoload", "autoload list end precedes start")
	}
	tableBytes, err := sliceRange(raw, bi.AutoloadListStart, bi.AutoloadListEnd-bi.AutoloadListStart, "extract.autoload")
	if err != nil {
		return nil, err
	}
	infos, err := ParseAutoloadInfoTable(tableBytes)
	if err != nil {
		return nil, err
	}

	cursor := bi.AutoloadListEnd
	blocks := make([]AutoloadBlock, len(infos))
	for i, info := range infos {
		code, err := sliceRange(raw, cursor, info.CodeSize, "extract.autoload")
		if err != nil {
			return nil, err
		}
		blocks[i] = AutoloadBlock{Info: info, Code: append([]byte(nil), code...)}
		cursor += info.CodeSize
	}
	return blocks, nil
}

func extractFAT(raw []byte, header *Header) ([]FATEntry, error) {
	b, err := sliceRange(raw, header.FileAllocs.Offset, header.FileAllocs.Size, "extract.fat")
	if err != nil {
		return nil, err
	}
	return ParseFAT(b)
}

func extractOverlays(raw []byte, to TableOffset, fat []FATEntry) ([]Overlay, error) {
	if to.Size == 0 {
		return nil, nil
	}
	b, err := sliceRange(raw, to.Offset, to.Size, "extract.overlay")
	if err != nil {
		return nil, err
	}
	entries, err := ParseOverlayTable(b)
	if err != nil {
		return nil, err
	}

	out := make([]Overlay, len(entries))
	for i, e := range entries {
		if int(e.FileID) >= len(fat) {
			return nil, newErr(KindSizeMismatch, "extract.overlay", "overlay %d references out-of-range file id %d", e.ID, e.FileID)
		}
		fe := fat[e.FileID]
		code, err := sliceRange(raw, fe.Start, fe.Size(), "extract.overlay")
		if err != nil {
			return nil, err
		}
		out[i] = Overlay{Entry: e, Code: append([]byte(nil), code...)}
	}
	return out, nil
}

func extractFileTree(raw []byte, header *Header, fat []FATEntry) (*FileTreeNode, error) {
	b, err := sliceRange(raw, header.FileNames.Offset, header.FileNames.Size, "extract.fnt")
	if err != nil {
		return nil, err
	}
	root, err := ParseFNT(b)
	if err != nil {
		return nil, err
	}

	var fillErr error
	r := &ROM{Files: root}
	r.Walk(func(_ []string, node *FileTreeNode) {
		if fillErr != nil || node.IsDir {
			return
		}
		if int(node.FileID) >= len(fat) {
			fillErr = newErr(KindSizeMismatch, "extract.fnt", "file id %d out of range of FAT", node.FileID)
			return
		}
		fe := fat[node.FileID]
		content, err := sliceRange(raw, fe.Start, fe.Size(), "extract.fnt")
		if err != nil {
			fillErr = err
			return
		}
		node.Contents = append([]byte(nil), content...)
	})
	return root, fillErr
}

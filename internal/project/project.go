package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndskit/ndspack/lib/rom"
)

const (
	configFileName = "config.yaml"
)

// Materialize writes r out as an unpacked project directory at dir
// (§6's project layout), ready for Load to read back.
func Materialize(r *rom.ROM, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("project: creating %s: %w", dir, err)
	}

	cfg := Config{
		Header:     "header.yaml",
		HeaderLogo: "header_logo.png",
		ARM9:       "arm9.bin",
		ARM9Config: "arm9_config.yaml",
		ARM7:       "arm7.bin",
		ARM7Config: "arm7_config.yaml",
		Banner:     "banner.yaml",
		Files:      "files",
		PathOrder:  "path_order",
		Alignment:  DefaultAlignment(),
	}

	if err := writeYAML(filepath.Join(dir, cfg.Header), headerConfigOf(r.Header)); err != nil {
		return err
	}
	if err := EncodeHeaderLogoPNG(filepath.Join(dir, cfg.HeaderLogo), r.HeaderLogo); err != nil {
		return err
	}

	if err := writeProgram(dir, cfg.ARM9, cfg.ARM9Config, r.ARM9); err != nil {
		return err
	}
	if err := writeProgram(dir, cfg.ARM7, cfg.ARM7Config, r.ARM7); err != nil {
		return err
	}

	if r.ITCM != nil {
		cfg.ITCM, cfg.ITCMConfig = "itcm.bin", "itcm_config.yaml"
		if err := writeAutoload(dir, cfg.ITCM, cfg.ITCMConfig, r.ITCM); err != nil {
			return err
		}
	}
	if r.DTCM != nil {
		cfg.DTCM, cfg.DTCMConfig = "dtcm.bin", "dtcm_config.yaml"
		if err := writeAutoload(dir, cfg.DTCM, cfg.DTCMConfig, r.DTCM); err != nil {
			return err
		}
	}

	var err error
	cfg.ARM9Overlays, err = writeOverlays(dir, "arm9_overlay", r.ARM9Overlays)
	if err != nil {
		return err
	}
	cfg.ARM7Overlays, err = writeOverlays(dir, "arm7_overlay", r.ARM7Overlays)
	if err != nil {
		return err
	}

	if r.Banner != nil {
		if err := writeBanner(dir, cfg.Banner, r.Banner); err != nil {
			return err
		}
	}

	if r.Files != nil {
		if err := os.MkdirAll(filepath.Join(dir, cfg.Files), 0o755); err != nil {
			return fmt.Errorf("project: creating %s: %w", cfg.Files, err)
		}
		if err := writeFileTree(filepath.Join(dir, cfg.Files), r.Files); err != nil {
			return err
		}
		if err := writePathOrder(filepath.Join(dir, cfg.PathOrder), collectPathOrder(r.Files)); err != nil {
			return err
		}
	}

	return writeYAML(filepath.Join(dir, configFileName), cfg)
}

// Load reads an unpacked project directory back into a ROM, plus the
// path order to hand to rom.AssembleOptions.
func Load(dir string) (*rom.ROM, Config, [][]string, error) {
	var cfg Config
	if err := readYAML(filepath.Join(dir, configFileName), &cfg); err != nil {
		return nil, cfg, nil, err
	}

	var hc HeaderConfig
	if err := readYAML(filepath.Join(dir, cfg.Header), &hc); err != nil {
		return nil, cfg, nil, err
	}
	header := &rom.Header{
		Title: hc.Title, GameCode: hc.GameCode, MakerCode: hc.MakerCode,
		UnitCode: hc.UnitCode, SeedSelect: hc.SeedSelect, Region: hc.Region,
		RomVersion: hc.RomVersion, Autostart: hc.Autostart,
		NormalCardControl: hc.NormalCardControl, SecureCardControl: hc.SecureCardControl,
		SecureAreaDelay: hc.SecureAreaDelay,
	}

	headerLogo, err := DecodeHeaderLogoPNG(filepath.Join(dir, cfg.HeaderLogo))
	if err != nil {
		return nil, cfg, nil, err
	}

	arm9, err := readProgram(dir, cfg.ARM9, cfg.ARM9Config)
	if err != nil {
		return nil, cfg, nil, err
	}
	arm7, err := readProgram(dir, cfg.ARM7, cfg.ARM7Config)
	if err != nil {
		return nil, cfg, nil, err
	}

	r := &rom.ROM{Header: header, HeaderLogo: headerLogo, ARM9: arm9, ARM7: arm7}

	if cfg.ITCM != "" {
		r.ITCM, err = readAutoload(dir, cfg.ITCM, cfg.ITCMConfig)
		if err != nil {
			return nil, cfg, nil, err
		}
	}
	if cfg.DTCM != "" {
		r.DTCM, err = readAutoload(dir, cfg.DTCM, cfg.DTCMConfig)
		if err != nil {
			return nil, cfg, nil, err
		}
	}

	r.ARM9Overlays, err = readOverlays(dir, cfg.ARM9Overlays)
	if err != nil {
		return nil, cfg, nil, err
	}
	r.ARM7Overlays, err = readOverlays(dir, cfg.ARM7Overlays)
	if err != nil {
		return nil, cfg, nil, err
	}

	if cfg.Banner != "" {
		if _, err := os.Stat(filepath.Join(dir, cfg.Banner)); err == nil {
			r.Banner, err = readBanner(dir, cfg.Banner)
			if err != nil {
				return nil, cfg, nil, err
			}
		}
	}

	if cfg.Files != "" {
		r.Files, err = readFileTree(filepath.Join(dir, cfg.Files))
		if err != nil {
			return nil, cfg, nil, err
		}
	}

	var order [][]string
	if cfg.PathOrder != "" {
		order, err = readPathOrder(filepath.Join(dir, cfg.PathOrder))
		if err != nil {
			return nil, cfg, nil, err
		}
	}

	return r, cfg, order, nil
}

func headerConfigOf(h *rom.Header) HeaderConfig {
	return HeaderConfig{
		Title: h.Title, GameCode: h.GameCode, MakerCode: h.MakerCode,
		UnitCode: h.UnitCode, SeedSelect: h.SeedSelect, Region: h.Region,
		RomVersion: h.RomVersion, Autostart: h.Autostart,
		NormalCardControl: h.NormalCardControl, SecureCardControl: h.SecureCardControl,
		SecureAreaDelay: h.SecureAreaDelay,
	}
}

func writeProgram(dir, codePath, configPath string, p *rom.Program) error {
	if err := os.WriteFile(filepath.Join(dir, codePath), p.Code, 0o644); err != nil {
		return fmt.Errorf("project: writing %s: %w", codePath, err)
	}
	pc := ProgramConfig{
		BaseAddress: p.BaseAddress, Entry: p.Entry,
		BuildInfoOffset: p.BuildInfoOffset, AutoloadCallback: p.AutoloadCallback,
		Compressed: p.IsCompressed(),
	}
	return writeYAML(filepath.Join(dir, configPath), pc)
}

// readProgram loads a program's code and config. Build info, if
// present in the code at its recorded offset, is left exactly as the
// bytes say; callers that changed BuildInfoOffset in config should also
// have re-run extract/patch rather than hand-edit the binary.
func readProgram(dir, codePath, configPath string) (*rom.Program, error) {
	code, err := os.ReadFile(filepath.Join(dir, codePath))
	if err != nil {
		return nil, fmt.Errorf("project: reading %s: %w", codePath, err)
	}
	var pc ProgramConfig
	if err := readYAML(filepath.Join(dir, configPath), &pc); err != nil {
		return nil, err
	}
	p := &rom.Program{
		BaseAddress: pc.BaseAddress, Entry: pc.Entry,
		BuildInfoOffset: pc.BuildInfoOffset, AutoloadCallback: pc.AutoloadCallback,
		Code: code,
	}
	return p, nil
}

// writeAutoload emits an autoload block's code and metadata as a
// convenience artifact for inspection. Load reads it back into
// ROM.ITCM/ROM.DTCM but does not splice it into the owning program,
// since the autoload block's bytes already live inside the owning
// program's Code at the offset its build info's autoload list records
// (the same region this package's ARM9/ARM7 writer already rebuilds).
func writeAutoload(dir, codePath, configPath string, b *rom.AutoloadBlock) error {
	if err := os.WriteFile(filepath.Join(dir, codePath), b.Code, 0o644); err != nil {
		return fmt.Errorf("project: writing %s: %w", codePath, err)
	}
	ac := AutoloadConfig{BaseAddress: b.Info.BaseAddress, BssSize: b.Info.BssSize}
	return writeYAML(filepath.Join(dir, configPath), ac)
}

func readAutoload(dir, codePath, configPath string) (*rom.AutoloadBlock, error) {
	code, err := os.ReadFile(filepath.Join(dir, codePath))
	if err != nil {
		return nil, fmt.Errorf("project: reading %s: %w", codePath, err)
	}
	var ac AutoloadConfig
	if err := readYAML(filepath.Join(dir, configPath), &ac); err != nil {
		return nil, err
	}
	return &rom.AutoloadBlock{
		Info: rom.AutoloadInfo{BaseAddress: ac.BaseAddress, CodeSize: uint32(len(code)), BssSize: ac.BssSize},
		Code: code,
	}, nil
}

func writeOverlays(dir, prefix string, overlays []rom.Overlay) ([]OverlayRef, error) {
	refs := make([]OverlayRef, 0, len(overlays))
	for i, ov := range overlays {
		codePath := fmt.Sprintf("%s_%d.bin", prefix, i)
		configPath := fmt.Sprintf("%s_%d.yaml", prefix, i)
		if err := os.WriteFile(filepath.Join(dir, codePath), ov.Code, 0o644); err != nil {
			return nil, fmt.Errorf("project: writing %s: %w", codePath, err)
		}
		oc := OverlayConfig{
			ID: ov.Entry.ID, BaseAddress: ov.Entry.BaseAddr, BssSize: ov.Entry.BssSize,
			CtorStart: ov.Entry.CtorStart, CtorEnd: ov.Entry.CtorEnd, FileID: ov.Entry.FileID,
			Compressed: ov.Entry.IsCompressed, Signed: ov.Entry.IsSigned,
		}
		if err := writeYAML(filepath.Join(dir, configPath), oc); err != nil {
			return nil, err
		}
		refs = append(refs, OverlayRef{Code: codePath, Config: configPath})
	}
	return refs, nil
}

func readOverlays(dir string, refs []OverlayRef) ([]rom.Overlay, error) {
	out := make([]rom.Overlay, 0, len(refs))
	for _, ref := range refs {
		code, err := os.ReadFile(filepath.Join(dir, ref.Code))
		if err != nil {
			return nil, fmt.Errorf("project: reading %s: %w", ref.Code, err)
		}
		var oc OverlayConfig
		if err := readYAML(filepath.Join(dir, ref.Config), &oc); err != nil {
			return nil, err
		}
		entry := rom.OverlayEntry{
			ID: oc.ID, BaseAddr: oc.BaseAddress, CodeSize: uint32(len(code)),
			BssSize: oc.BssSize, CtorStart: oc.CtorStart, CtorEnd: oc.CtorEnd,
			FileID: oc.FileID, IsCompressed: oc.Compressed, IsSigned: oc.Signed,
		}
		if oc.Compressed {
			entry.CompressedSize = uint32(len(code))
		}
		out = append(out, rom.Overlay{Entry: entry, Code: code})
	}
	return out, nil
}

func writeBanner(dir, configPath string, b *rom.Banner) error {
	iconPath, palettePath := "banner/bitmap.png", "banner/palette.png"
	if err := os.MkdirAll(filepath.Join(dir, "banner"), 0o755); err != nil {
		return fmt.Errorf("project: creating banner directory: %w", err)
	}
	if err := EncodeBannerIconPNG(filepath.Join(dir, iconPath), filepath.Join(dir, palettePath), b.Icon, b.Palette); err != nil {
		return err
	}
	bc := BannerConfig{Version: int(b.Version), Titles: b.Titles, Icon: iconPath, Palette: palettePath}
	return writeYAML(filepath.Join(dir, configPath), bc)
}

func readBanner(dir, configPath string) (*rom.Banner, error) {
	var bc BannerConfig
	if err := readYAML(filepath.Join(dir, configPath), &bc); err != nil {
		return nil, err
	}
	icon, palette, err := DecodeBannerIconPNG(filepath.Join(dir, bc.Icon), filepath.Join(dir, bc.Palette))
	if err != nil {
		return nil, err
	}
	return &rom.Banner{
		Version: rom.BannerVersion(bc.Version), Titles: bc.Titles,
		Icon: icon, Palette: palette,
	}, nil
}

// Package project implements the on-disk "unpacked project" directory
// layout described by §6: reading and writing the YAML configuration
// records, PNG boundary for the logo and banner icon, and the file
// tree underneath files/, so the CLI can round-trip a real directory
// tree rather than just in-memory byte buffers.
package project

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level config.yaml record: paths to every other
// project file, plus the alignment record used when assembling.
type Config struct {
	Header     string `yaml:"header"`
	HeaderLogo string `yaml:"header_logo"`

	ARM9       string `yaml:"arm9"`
	ARM9Config string `yaml:"arm9_config"`
	ARM7       string `yaml:"arm7"`
	ARM7Config string `yaml:"arm7_config"`

	ITCM       string `yaml:"itcm,omitempty"`
	ITCMConfig string `yaml:"itcm_config,omitempty"`
	DTCM       string `yaml:"dtcm,omitempty"`
	DTCMConfig string `yaml:"dtcm_config,omitempty"`

	Banner string `yaml:"banner"`

	ARM9Overlays []OverlayRef `yaml:"arm9_overlays,omitempty"`
	ARM7Overlays []OverlayRef `yaml:"arm7_overlays,omitempty"`

	Files     string `yaml:"files"`
	PathOrder string `yaml:"path_order"`

	Alignment Alignment `yaml:"alignment"`
}

// OverlayRef points at one overlay's code file and config record.
type OverlayRef struct {
	Code   string `yaml:"code"`
	Config string `yaml:"config"`
}

// Alignment is the per-config alignment record of §6: byte alignment
// for each section, plus the file-image padding value and per-file
// overrides.
type Alignment struct {
	ARM9             int            `yaml:"arm9"`
	ARM9OverlayTable int            `yaml:"arm9_overlay_table"`
	ARM7             int            `yaml:"arm7"`
	ARM7OverlayTable int            `yaml:"arm7_overlay_table"`
	FNT              int            `yaml:"fnt"`
	FAT              int            `yaml:"fat"`
	Banner           int            `yaml:"banner"`
	FileImage        int            `yaml:"file_image"`
	FileImagePadding byte           `yaml:"file_image_padding"`
	PerFile          map[string]int `yaml:"per_file,omitempty"`
}

// DefaultAlignment matches §3/§6's stated default: 0x200 everywhere,
// 0xFF padding.
func DefaultAlignment() Alignment {
	return Alignment{
		ARM9: 0x200, ARM9OverlayTable: 0x200,
		ARM7: 0x200, ARM7OverlayTable: 0x200,
		FNT: 0x200, FAT: 0x200, Banner: 0x200, FileImage: 0x200,
		FileImagePadding: 0xFF,
	}
}

// HeaderConfig is header.yaml: the handful of header fields an author
// sets directly. Everything else (offsets, sizes, CRCs) is computed by
// the assembler.
type HeaderConfig struct {
	Title      string `yaml:"title"`
	GameCode   string `yaml:"game_code"`
	MakerCode  string `yaml:"maker_code"`
	UnitCode   byte   `yaml:"unit_code"`
	SeedSelect byte   `yaml:"seed_select"`
	Region     byte   `yaml:"region"`
	RomVersion byte   `yaml:"rom_version"`
	Autostart  byte   `yaml:"autostart"`

	NormalCardControl uint32 `yaml:"normal_card_control"`
	SecureCardControl uint32 `yaml:"secure_card_control"`
	SecureAreaDelay   uint16 `yaml:"secure_area_delay"`
}

// ProgramConfig is arm9_config.yaml / arm7_config.yaml.
type ProgramConfig struct {
	BaseAddress      uint32 `yaml:"base_address"`
	Entry            uint32 `yaml:"entry"`
	BuildInfoOffset  uint32 `yaml:"build_info_offset,omitempty"`
	AutoloadCallback uint32 `yaml:"autoload_callback,omitempty"`
	Compressed       bool   `yaml:"compressed"`
}

// AutoloadConfig is itcm_config.yaml / dtcm_config.yaml.
type AutoloadConfig struct {
	BaseAddress uint32 `yaml:"base_address"`
	BssSize     uint32 `yaml:"bss_size"`
}

// BannerConfig is banner.yaml.
type BannerConfig struct {
	Version int      `yaml:"version"`
	Titles  []string `yaml:"titles"`
	Icon    string   `yaml:"icon"`
	Palette string   `yaml:"palette"`
}

// OverlayConfig is a per-overlay config record.
type OverlayConfig struct {
	ID          uint32 `yaml:"id"`
	BaseAddress uint32 `yaml:"base_address"`
	BssSize     uint32 `yaml:"bss_size"`
	CtorStart   uint32 `yaml:"ctor_start"`
	CtorEnd     uint32 `yaml:"ctor_end"`
	FileID      uint32 `yaml:"file_id"`
	Compressed  bool   `yaml:"compressed"`
	Signed      bool   `yaml:"signed"`
}

func readYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("project: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("project: parsing %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, in any) error {
	b, err := yaml.Marshal(in)
	if err != nil {
		return fmt.Errorf("project: encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("project: writing %s: %w", path, err)
	}
	return nil
}

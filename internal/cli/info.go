package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndskit/ndspack/lib/rom"
)

var infoCmd = &cobra.Command{
	Use:   "info <rom>",
	Short: "Print a summary of a ROM image's header, programs, and banner",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	key, err := loadBlowfishKey()
	if err != nil {
		return err
	}

	r, err := rom.Extract(raw, rom.ExtractOptions{BlowfishKey: key})
	if err != nil && !rom.IsBlowfishKeyNeeded(err) {
		return err
	}
	if err != nil {
		// Header-level info is still useful without a key; report what
		// we can from the raw bytes.
		h, herr := rom.ParseHeader(raw[:rom.HeaderSize])
		if herr != nil {
			return err
		}
		printHeader(h)
		fmt.Println()
		fmt.Printf("ARM9 secure area is encrypted; pass --bios to decode further.\n")
		return nil
	}

	printHeader(r.Header)
	fmt.Println()
	fmt.Printf("ARM9: base=%#08x entry=%#08x size=%d compressed=%t\n",
		r.ARM9.BaseAddress, r.ARM9.Entry, len(r.ARM9.Code), r.ARM9.IsCompressed())
	fmt.Printf("ARM7: base=%#08x entry=%#08x size=%d\n",
		r.ARM7.BaseAddress, r.ARM7.Entry, len(r.ARM7.Code))
	fmt.Printf("ARM9 overlays: %d   ARM7 overlays: %d\n", len(r.ARM9Overlays), len(r.ARM7Overlays))
	if r.ARM9.Footer != nil {
		fmt.Printf("  Build info offset .......... : %#x\n", r.ARM9.Footer.BuildInfoOffset)
		fmt.Printf("  Overlay signatures offset .. : %#x\n", r.ARM9.Footer.OverlaySignaturesOffset)
	}
	printOverlayTable("ARM9", r.ARM9Overlays)
	printOverlayTable("ARM7", r.ARM7Overlays)

	if r.Banner != nil {
		fmt.Printf("Banner version: %#04x   titles: %d\n", uint16(r.Banner.Version), len(r.Banner.Titles))
		if len(r.Banner.Titles) > 0 {
			fmt.Printf("Title: %s\n", r.Banner.Titles[0])
		}
	}

	count := 0
	r.Walk(func(path []string, node *rom.FileTreeNode) {
		if !node.IsDir {
			count++
		}
	})
	fmt.Printf("Files: %d\n", count)

	return nil
}

// printOverlayTable renders one row per overlay, mirroring the
// original dump tool's per-overlay listing.
func printOverlayTable(label string, overlays []rom.Overlay) {
	if len(overlays) == 0 {
		fmt.Printf("%s overlay table is empty\n", label)
		return
	}
	for _, ov := range overlays {
		fmt.Printf("%s overlay %d: base=%#08x code_size=%d bss_size=%d compressed=%t file_id=%d\n",
			label, ov.Entry.ID, ov.Entry.BaseAddr, ov.Entry.CodeSize, ov.Entry.BssSize, ov.Entry.IsCompressed, ov.Entry.FileID)
	}
}

func printHeader(h *rom.Header) {
	fmt.Printf("Title: %q   Game code: %s   Maker code: %s\n", h.Title, h.GameCode, h.MakerCode)
	fmt.Printf("Unit code: %#02x   Region: %#02x   ROM version: %d\n", h.UnitCode, h.Region, h.RomVersion)
	fmt.Printf("Capacity exponent: %d   ROM size: %d bytes\n", h.Capacity, h.RomSize)
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndskit/ndspack/internal/project"
	"github.com/ndskit/ndspack/lib/lz77"
	"github.com/ndskit/ndspack/lib/rom"
)

var (
	buildEncrypt    bool
	buildCompress   bool
	buildDecompress bool
)

var buildCmd = &cobra.Command{
	Use:   "build <project-dir> <rom>",
	Short: "Assemble an unpacked project directory back into a ROM image",
	Args:  cobra.ExactArgs(2),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildEncrypt, "encrypt", false, "force-encrypt the secure area on emit if currently plaintext")
	buildCmd.Flags().BoolVar(&buildCompress, "compress", false, "LZ77-compress ARM9 and its overlays before assembling")
	buildCmd.Flags().BoolVar(&buildDecompress, "decompress", false, "LZ77-decompress ARM9 and its overlays before assembling")
	buildCmd.MarkFlagsMutuallyExclusive("compress", "decompress")
	rootCmd.AddCommand(buildCmd)
}

func applyCompressionToggle(r *rom.ROM) error {
	switch {
	case buildCompress:
		if err := rom.CompressProgram(r.ARM9, lz77.VersionOriginal); err != nil {
			return err
		}
		for i := range r.ARM9Overlays {
			if err := rom.CompressOverlay(&r.ARM9Overlays[i], lz77.VersionOriginal); err != nil {
				return err
			}
		}
	case buildDecompress:
		if err := rom.DecompressProgram(r.ARM9); err != nil {
			return err
		}
		for i := range r.ARM9Overlays {
			if err := rom.DecompressOverlay(&r.ARM9Overlays[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	projectDir, romPath := args[0], args[1]
	cmd.SilenceUsage = true

	key, err := loadBlowfishKey()
	if err != nil {
		return err
	}

	var parsed *rom.ROM
	var pathOrder [][]string
	var padding byte
	var raw []byte

	sections := []string{"read project", "assemble image", "write image"}
	err = runWithProgress(sections, func(name string) error {
		switch name {
		case "read project":
			r, cfg, order, rerr := project.Load(projectDir)
			if rerr != nil {
				return rerr
			}
			if rerr := applyCompressionToggle(r); rerr != nil {
				return rerr
			}
			parsed, pathOrder, padding = r, order, cfg.Alignment.FileImagePadding
			return nil
		case "assemble image":
			var aerr error
			raw, aerr = rom.Assemble(parsed, rom.AssembleOptions{
				BlowfishKey:           key,
				Encrypt:               buildEncrypt,
				PathOrder:             pathOrder,
				FileImagePaddingValue: padding,
			})
			if aerr != nil && rom.IsBlowfishKeyNeeded(aerr) {
				return fmt.Errorf("%w (pass --bios or set NDSPACK_BIOS)", aerr)
			}
			return aerr
		case "write image":
			return os.WriteFile(romPath, raw, 0o644)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Built %s from %s\n", romPath, projectDir)
	return nil
}

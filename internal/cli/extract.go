package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndskit/ndspack/internal/project"
	"github.com/ndskit/ndspack/lib/rom"
)

var extractCmd = &cobra.Command{
	Use:   "extract <rom> <project-dir>",
	Short: "Extract a ROM image into an unpacked project directory",
	Args:  cobra.ExactArgs(2),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	romPath, projectDir := args[0], args[1]
	cmd.SilenceUsage = true

	key, err := loadBlowfishKey()
	if err != nil {
		return err
	}

	var raw []byte
	var parsed *rom.ROM

	sections := []string{"read image", "parse header", "parse programs and overlays", "parse file tree and banner", "write project"}
	err = runWithProgress(sections, func(name string) error {
		switch name {
		case "read image":
			var rerr error
			raw, rerr = os.ReadFile(romPath)
			return rerr
		case "parse header", "parse programs and overlays", "parse file tree and banner":
			if parsed != nil {
				return nil // Extract does all of this in one pass
			}
			var perr error
			parsed, perr = rom.Extract(raw, rom.ExtractOptions{BlowfishKey: key})
			if perr != nil && rom.IsBlowfishKeyNeeded(perr) {
				return fmt.Errorf("%w (pass --bios or set NDSPACK_BIOS)", perr)
			}
			return perr
		case "write project":
			return project.Materialize(parsed, projectDir)
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Extracted %s to %s\n", romPath, projectDir)
	return nil
}

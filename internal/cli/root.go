// Package cli implements the ndspack command-line driver: a cobra
// command tree with extract, build, and info subcommands, reusing the
// teacher's root-command wiring style (package-level rootCmd,
// PersistentFlags in init, a thin Execute entry point).
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	biosPath string
)

var rootCmd = &cobra.Command{
	Use:   "ndspack",
	Short: "Extract, rebuild, and round-trip Nintendo DS ROM images",
	Long: `ndspack parses an NDS cartridge image into an unpacked project
directory, and reassembles a project directory back into a ROM image.

The Blowfish key used to decrypt or encrypt the ARM9 secure area is
derived from an ARM7 BIOS file. Pass its path with --bios, or set
NDSPACK_BIOS.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&biosPath, "bios", "", "path to an ARM7 BIOS file (for secure-area encrypt/decrypt), or set NDSPACK_BIOS")
}

func resolveBiosPath() string {
	if biosPath != "" {
		return biosPath
	}
	return os.Getenv("NDSPACK_BIOS")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

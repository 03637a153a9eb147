// Command mincpusim runs a flash image on the simulated Minimal CPU
// System datapath, writing UART output to stdout.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mincpusim/mincpu/membank"
	"github.com/mincpusim/mincpu/system"
	"github.com/spf13/cobra"
)

// wantsHelp reports whether args spells a request for usage under one of
// the non-cobra-native aliases. pflag parses a lone-dash multi-character
// argument as bundled shorthands, so "-help" and "-?" would otherwise fail
// with an "unknown shorthand flag" error instead of printing usage; they
// are special-cased here, ahead of cobra's own flag parsing.
func wantsHelp(args []string) bool {
	for _, a := range args {
		if a == "-help" || a == "-?" {
			return true
		}
		if a == "--" {
			return false
		}
	}
	return false
}

func main() {
	var cycles int
	var trace bool

	root := &cobra.Command{
		Use:   "mincpusim <flash-image>",
		Short: "Cycle-accurate simulator for the Minimal CPU System board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], cycles, trace)
		},
		SilenceUsage: true,
	}
	root.Flags().IntVar(&cycles, "cycles", 0, "stop after this many Step calls (0 runs until terminated)")
	root.Flags().BoolVar(&trace, "trace", false, "log the cycle count, A, B, PC and flags to stderr after every cycle (the control word is not logged)")

	if wantsHelp(os.Args[1:]) {
		if err := root.Help(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(flashPath string, cycles int, trace bool) error {
	img, err := os.ReadFile(flashPath)
	if err != nil {
		return fmt.Errorf("reading flash image: %w", err)
	}
	if len(img) != membank.FlashSize {
		fmt.Fprintf(os.Stderr, "flash image %q is %d bytes, want %d\n", flashPath, len(img), membank.FlashSize)
		os.Exit(2)
	}

	sys := system.New(os.Stdout)
	if err := sys.LoadFlash(img); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := sys.Reset(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	for cycles == 0 || int(sys.Cycles()) < cycles {
		if err := sys.Step(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if trace {
			log.Printf("cycle=%d A=%02x B=%02x PC=%04x flags=%03b", sys.Cycles(), sys.A(), sys.B(), sys.PC(), sys.Flags())
		}
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/cwbudde/kakuhen"
	"github.com/cwbudde/kakuhen/basin"
	"github.com/cwbudde/kakuhen/vegas"
	"github.com/spf13/cobra"
)

var inspectAlgo string

var inspectCmd = &cobra.Command{
	Use:   "inspect [state-file]",
	Short: "Load a .khs state file and print its grid summary",
	Long: `Constructs a sampler of the given algorithm and loads the grid
from state-file, re-deriving dimensionality and grid sizes from the file
rather than trusting any values passed on the command line, then prints
its fingerprint and prefix.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectAlgo, "algo", "vegas", "Sampler: vegas or basin")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	var sampler *kakuhen.Sampler
	var err error
	switch inspectAlgo {
	case "vegas":
		sampler, err = kakuhen.NewVegas(1, vegas.DefaultOptions())
	case "basin":
		sampler, err = kakuhen.NewBasin(1, basin.DefaultOptions())
	default:
		return fmt.Errorf("unknown algo %q (want vegas or basin)", inspectAlgo)
	}
	if err != nil {
		return fmt.Errorf("construct sampler: %w", err)
	}

	if err := sampler.LoadState(path); err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	fmt.Printf("path:        %s\n", path)
	fmt.Printf("algo:        %s\n", inspectAlgo)
	fmt.Printf("dim:         %d\n", sampler.Dim())
	fmt.Printf("prefix:      %s\n", sampler.Prefix(false))
	fmt.Printf("fingerprint: %016x\n", sampler.Fingerprint())
	fmt.Printf("capabilities: adapt=%v state=%v data=%v\n",
		sampler.Supports(kakuhen.CapAdapt),
		sampler.Supports(kakuhen.CapState),
		sampler.Supports(kakuhen.CapData))

	return nil
}

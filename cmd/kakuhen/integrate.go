package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/kakuhen"
	"github.com/cwbudde/kakuhen/basin"
	"github.com/cwbudde/kakuhen/vegas"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	intAlgo      string
	intFunc      string
	intDim       int
	intNeval     int
	intNiter     int
	intK         int
	intK1        int
	intK2        int
	intAlpha     float64
	intSeed      uint64
	intAdapt     bool
	intVerbose   int
	intStateOut  string
	intDataOut   string
	intRNGOut    string
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Integrate a built-in test function with VEGAS or BASIN",
	Long: `Runs niter iterations of neval draws each against one of a small
library of named test integrands, optionally adapting the grid between
iterations and checkpointing state, per-cell data, and the RNG stream to
disk.`,
	RunE: runIntegrate,
}

func init() {
	integrateCmd.Flags().StringVar(&intAlgo, "algo", "vegas", "Sampler: vegas or basin")
	integrateCmd.Flags().StringVar(&intFunc, "func", "product", "Integrand: constant, product, ridge, gaussian")
	integrateCmd.Flags().IntVar(&intDim, "dim", 2, "Dimensionality")
	integrateCmd.Flags().IntVar(&intNeval, "neval", 10000, "Samples per iteration")
	integrateCmd.Flags().IntVar(&intNiter, "niter", 5, "Number of iterations")
	integrateCmd.Flags().IntVar(&intK, "k", vegas.DefaultK, "VEGAS grid cells per dimension")
	integrateCmd.Flags().IntVar(&intK1, "k1", basin.DefaultK1, "BASIN coarse bins per dimension")
	integrateCmd.Flags().IntVar(&intK2, "k2", basin.DefaultK2, "BASIN conditional bins per coarse bin")
	integrateCmd.Flags().Float64Var(&intAlpha, "alpha", vegas.DefaultAlpha, "Damping exponent")
	integrateCmd.Flags().Uint64Var(&intSeed, "seed", 1, "RNG seed")
	integrateCmd.Flags().BoolVar(&intAdapt, "adapt", true, "Refine the grid after each iteration")
	integrateCmd.Flags().IntVar(&intVerbose, "verbosity", 1, "0 = silent, 1 = per-iteration summary")
	integrateCmd.Flags().StringVar(&intStateOut, "state-out", "", "Save grid state to this path after the run")
	integrateCmd.Flags().StringVar(&intDataOut, "data-out", "", "Save per-cell data and result to this path after the run")
	integrateCmd.Flags().StringVar(&intRNGOut, "rng-out", "", "Save RNG stream to this path after the run")
	rootCmd.AddCommand(integrateCmd)
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()

	f, err := builtinIntegrand(intFunc)
	if err != nil {
		return err
	}

	var sampler *kakuhen.Sampler
	switch intAlgo {
	case "vegas":
		sampler, err = kakuhen.NewVegas(intDim, vegas.Options{Alpha: intAlpha, K: intK})
	case "basin":
		sampler, err = kakuhen.NewBasin(intDim, basin.Options{
			Alpha: intAlpha,
			K1:    intK1,
			K2:    intK2,
			Ws:    basin.DefaultWs,
			SMin:  basin.DefaultSMin,
			Rho:   basin.DefaultRho,
		})
	default:
		return fmt.Errorf("unknown algo %q (want vegas or basin)", intAlgo)
	}
	if err != nil {
		return fmt.Errorf("construct sampler: %w", err)
	}

	sampler.SetSeed(intSeed)
	sampler.SetLogger(logger.With("run_id", runID))

	slog.Info("starting integration", "run_id", runID, "algo", intAlgo, "func", intFunc,
		"dim", intDim, "neval", intNeval, "niter", intNiter, "adapt", intAdapt)

	start := time.Now()
	result, err := sampler.Integrate(f, kakuhen.Options{
		Neval:     &intNeval,
		Niter:     &intNiter,
		Adapt:     &intAdapt,
		Verbosity: &intVerbose,
	})
	if err != nil {
		return fmt.Errorf("integrate: %w", err)
	}
	elapsed := time.Since(start)

	value, _ := result.Value()
	errv, _ := result.Error()
	chi2dof, _ := result.Chi2Dof()

	fmt.Printf("run %s: value = %.6f +/- %.6f (chi2/dof = %.3f) in %s\n",
		runID, value, errv, chi2dof, elapsed)

	if intStateOut != "" {
		if err := sampler.SaveState(intStateOut); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		fmt.Printf("wrote state to %s\n", intStateOut)
	}
	if intDataOut != "" {
		if err := sampler.SaveData(intDataOut); err != nil {
			return fmt.Errorf("save data: %w", err)
		}
		fmt.Printf("wrote data to %s\n", intDataOut)
	}
	if intRNGOut != "" {
		if err := sampler.SaveRNG(intRNGOut); err != nil {
			return fmt.Errorf("save rng: %w", err)
		}
		fmt.Printf("wrote rng state to %s\n", intRNGOut)
	}

	return nil
}

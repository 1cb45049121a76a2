package main

import (
	"fmt"

	ctu "github.com/astrogrid/ctumhd"
	"github.com/cpmech/gosl/mpi"
	"github.com/spf13/cobra"
)

// mpiSelftestCmd starts the MPI runtime, reports rank/size, and tears
// it down again, grounded on gofem's main.go mpi.Start/mpi.Rank/
// mpi.Stop bracket — the minimum a CLI needs to confirm it was
// actually launched under mpirun before committing to a real run.
var mpiSelftestCmd = &cobra.Command{
	Use:   "mpi-selftest",
	Short: "Start MPI, report rank and size, and exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := ctu.NewMPIExchanger()
		if err != nil {
			return err
		}
		defer mpi.Stop(false)
		fmt.Printf("ctu: mpi rank %d of %d (on=%v)\n", ex.Rank(), mpi.Size(), mpi.IsOn())
		return nil
	},
}

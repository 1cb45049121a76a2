// Package main is the ctu command-line interface, InMAP's
// inmap/cmd.RootCmd shape: a persistent --config flag decoded once at
// startup, subcommands doing the actual work.
package main

import (
	"fmt"
	"os"

	"github.com/astrogrid/ctumhd/internal/config"
	"github.com/spf13/cobra"
)

var (
	configFile string

	// loadedConfig holds the decoded run configuration, populated by
	// loadConfig, which the run and validate-config subcommands call
	// from their RunE.
	loadedConfig *config.RunConfig
)

var rootCmd = &cobra.Command{
	Use:   "ctu",
	Short: "A directionally unsplit CTU/CT finite-volume MHD integrator.",
	Long: `ctu runs a Corner Transport Upwind integrator with Constrained
Transport on a structured Cartesian grid. Use the subcommands below to
run a simulation or check a configuration file.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./ctu.toml", "configuration file location")
	rootCmd.AddCommand(runCmd, validateConfigCmd, mpiSelftestCmd)
}

func loadConfig() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	loadedConfig = cfg
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Parse and validate a configuration file without running.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		fmt.Printf("ctu: %s is valid: %dx%dx%d grid, %d ghost cells\n",
			configFile, loadedConfig.Grid.Nx1, loadedConfig.Grid.Nx2, loadedConfig.Grid.Nx3, loadedConfig.Grid.NGhost)
		return nil
	},
}

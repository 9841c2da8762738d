package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/emsga/app"
	"github.com/kilianp07/emsga/pkg/export"
)

var (
	optimizeFormat string
	optimizeSeed   int64
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run one optimisation and print the schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("seed") {
			cfg.GA.Seed = optimizeSeed
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()
		res, err := svc.RunOnce(cmd.Context())
		if res == nil {
			return err
		}
		if werr := export.Write(cmd.OutOrStdout(), optimizeFormat, res.Run); werr != nil {
			return werr
		}
		return err
	},
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeFormat, "format", "f", export.FormatTable, "output format: table, json, csv, yaml or html")
	optimizeCmd.Flags().Int64Var(&optimizeSeed, "seed", 0, "random seed; 0 draws a new one")
	rootCmd.AddCommand(optimizeCmd)
}

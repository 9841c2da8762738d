package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/emsga/core/results"
	"github.com/kilianp07/emsga/pkg/export"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the latest stored schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sink, err := results.NewSink(cfg.Results.Sinks)
		if err != nil {
			return err
		}
		defer func() {
			if c, ok := sink.(interface{ Close() error }); ok {
				_ = c.Close()
			}
		}()
		reader, ok := sink.(results.Reader)
		if !ok {
			return fmt.Errorf("no readable result store configured")
		}
		run, err := reader.Latest(cmd.Context())
		if errors.Is(err, results.ErrNoRuns) {
			fmt.Fprintln(cmd.OutOrStdout(), "no runs stored yet")
			return nil
		}
		if err != nil {
			return err
		}
		return export.Write(cmd.OutOrStdout(), reportFormat, run)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", export.FormatTable, "output format: table, json, csv, yaml or html")
	rootCmd.AddCommand(reportCmd)
}

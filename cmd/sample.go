package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadeck/internal/sample"
)

var (
	sampleOutput string
	sampleRows   int
	sampleSeed   uint64
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic sales dataset (CSV or XLSX) for trying things out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sample.Write(sampleOutput, sampleRows, sampleSeed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d sample rows to %s\n", sampleRows, sampleOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().StringVarP(&sampleOutput, "output", "o", "sample_data.xlsx", "output file (.csv or .xlsx)")
	sampleCmd.Flags().IntVar(&sampleRows, "rows", sample.DefaultRows, "number of rows")
	sampleCmd.Flags().Uint64Var(&sampleSeed, "seed", 42, "random seed")
}

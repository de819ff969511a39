package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadeck/internal/analysis"
)

var (
	chartKind      string
	chartX         string
	chartY         string
	chartBins      int
	chartFormat    string
	chartOutput    string
	chartSheetName string
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Build a chart payload (bar, line, pie, scatter, histogram, box) from a file",
	Example: `  datadeck chart sales.csv --type bar -x Category -y Sales
  datadeck chart sales.xlsx --type histogram -x Price --bins 20 --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := localOptions(chartSheetName)
		if chartBins > 0 {
			opt.Bins = chartBins
		}
		svc := newLocalService(opt)

		ctx := commandContext(cmd)
		if _, err := loadLocal(ctx, svc, args[0]); err != nil {
			return err
		}
		res, err := svc.GenerateChart(ctx, args[0], analysis.ChartRequest{Kind: chartKind, XColumn: chartX, YColumn: chartY})
		if err != nil {
			return err
		}
		return writeOutput(res, nil, outputOptions{
			Format:     chartFormat,
			OutputPath: chartOutput,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

func chartKindNames() string {
	names := make([]string, len(analysis.Kinds))
	for i, k := range analysis.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, "|")
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chartKind, "type", "t", "bar", fmt.Sprintf("chart type: %s", chartKindNames()))
	chartCmd.Flags().StringVarP(&chartX, "x", "x", "", "x (category) column")
	chartCmd.Flags().StringVarP(&chartY, "y", "y", "", "y (value) column; optional for pie and histogram")
	chartCmd.Flags().IntVar(&chartBins, "bins", 0, "histogram bins (default from config)")
	chartCmd.Flags().StringVarP(&chartFormat, "format", "f", "json", "output format: json|yaml")
	chartCmd.Flags().StringVarP(&chartOutput, "output", "o", "", "optional path to write the payload")
	chartCmd.Flags().StringVar(&chartSheetName, "sheet-name", "", "XLSX: sheet name to read")
}

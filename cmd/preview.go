package cmd

import (
	"github.com/spf13/cobra"
)

var (
	pvLimit     int
	pvMaxChars  int
	pvFormat    string
	pvSheetName string
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the first rows of a file with long cells truncated",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := localOptions(pvSheetName)
		if pvMaxChars > 0 {
			opt.Preview.MaxChars = pvMaxChars
		}
		svc := newLocalService(opt)
		ctx := commandContext(cmd)
		if _, err := loadLocal(ctx, svc, args[0]); err != nil {
			return err
		}
		p, err := svc.Preview(ctx, args[0], pvLimit)
		if err != nil {
			return err
		}
		return writeOutput(p, p.Markdown, outputOptions{Format: pvFormat, Writer: cmd.OutOrStdout()})
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVarP(&pvLimit, "limit", "n", 0, "rows to show (default from config)")
	previewCmd.Flags().IntVar(&pvMaxChars, "max-chars", 0, "truncate cells longer than this (default from config)")
	previewCmd.Flags().StringVarP(&pvFormat, "format", "f", "md", "output format: md|json|yaml")
	previewCmd.Flags().StringVar(&pvSheetName, "sheet-name", "", "XLSX: sheet name to read")
}

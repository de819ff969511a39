package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadeck/internal/service"
)

var (
	anaOutputPath  string
	anaFormat      string
	anaSheetName   string
	anaPreviewRows int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Summarize a CSV/XLSX file: column types, statistics and sample rows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		svc := newLocalService(localOptions(anaSheetName))
		res, err := loadLocal(ctx, svc, args[0])
		if err != nil {
			return err
		}
		if anaPreviewRows > 0 {
			p, err := svc.Preview(ctx, args[0], anaPreviewRows)
			if err != nil {
				return err
			}
			res.Preview = p
		}
		return writeOutput(res, func() string { return reportMarkdown(res) }, outputOptions{
			Format:     anaFormat,
			OutputPath: anaOutputPath,
			Writer:     cmd.OutOrStdout(),
		})
	},
}

// loadLocal reads path and loads it as the working dataset of a session
// named after the path.
func loadLocal(ctx context.Context, svc *service.Service, path string) (*service.UploadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	res, err := svc.Upload(ctx, path, filepath.Base(path), content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return res, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func reportMarkdown(res *service.UploadResult) string {
	return res.Stats.Markdown() + "\n" + res.Preview.Markdown()
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "md", "output format: md|json|yaml")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to analyze (default: active sheet)")
	analyzeCmd.Flags().IntVar(&anaPreviewRows, "sample-rows", 0, "number of sample rows to include (default from config)")
}

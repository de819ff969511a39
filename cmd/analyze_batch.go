package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/datadeck/internal/service"
)

var (
	abOutputDir string
	abFormat    string
	abSheetName string
	abJobs      int
	abQuiet     bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/XLSX files concurrently",
	Long: `Analyze every file matched by the given paths or glob patterns. Files are
processed concurrently; reports are printed (or written with --output-dir) in
sorted path order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)
		out := cmd.OutOrStdout()
		svc := newLocalService(localOptions(abSheetName))

		jobs := abJobs
		if jobs <= 0 {
			jobs = runtime.NumCPU()
		}
		results := make([]*service.UploadResult, len(files))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(jobs)
		for i, path := range files {
			g.Go(func() error {
				res, err := loadLocal(gctx, svc, path)
				if err != nil {
					return err
				}
				// each file used its own session; release it once summarized
				svc.Clear(path)
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		total := len(files)
		var used map[string]struct{}
		if abOutputDir != "" {
			if err := os.MkdirAll(abOutputDir, 0o755); err != nil {
				return fmt.Errorf("mkdir output dir: %w", err)
			}
			used = map[string]struct{}{}
		}
		for i, res := range results {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, files[i])
			}
			opts := outputOptions{Format: abFormat, Quiet: abQuiet, Writer: out}
			if abOutputDir != "" {
				opts.OutputPath = reportPath(abOutputDir, files[i], abFormat, used)
			} else if abQuiet {
				continue
			}
			if err := writeOutput(res, func() string { return reportMarkdown(res) }, opts); err != nil {
				return err
			}
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// reportPath picks <base>.summary.<ext> under dir, adding __2, __3, ... when
// two inputs share a basename or a report already exists.
func reportPath(dir, input, format string, used map[string]struct{}) string {
	ext := "md"
	switch strings.ToLower(format) {
	case "json":
		ext = "json"
	case "yaml", "yml":
		ext = "yaml"
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	cand := filepath.Join(dir, fmt.Sprintf("%s.summary.%s", base, ext))
	for idx := 2; ; idx++ {
		_, taken := used[cand]
		if _, err := os.Stat(cand); !taken && os.IsNotExist(err) {
			break
		}
		cand = filepath.Join(dir, fmt.Sprintf("%s__%d.summary.%s", base, idx, ext))
	}
	used[cand] = struct{}{}
	return cand
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "write one report per file into this directory")
	analyzeBatchCmd.Flags().StringVarP(&abFormat, "format", "f", "md", "report format: md|json|yaml")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeBatchCmd.Flags().IntVarP(&abJobs, "jobs", "j", 0, "files analyzed in parallel (default: number of CPUs)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}

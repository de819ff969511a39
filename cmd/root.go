package cmd

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadeck/internal/analysis"
	cfgpkg "github.com/KaramelBytes/datadeck/internal/config"
	"github.com/KaramelBytes/datadeck/internal/logger"
	"github.com/KaramelBytes/datadeck/internal/service"
	"github.com/KaramelBytes/datadeck/internal/workspace"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logger.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "datadeck",
	Short: "datadeck: inspect tabular files and turn them into chart-ready data",
	Long: `datadeck loads CSV and Excel files, infers column types, summarizes them and
builds chart payloads (bar, line, pie, scatter, histogram, box). Use it from the
command line or run "datadeck serve" to expose the same operations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.datadeck/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("debug") {
		cfg.Debug = debug
	}
	log = logger.New(cfg.Debug)
}

// currentConfig returns the loaded configuration, loading it on first use
// so commands also work when executed without Execute (as in tests).
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// localOptions are the service options for commands that read files from
// disk. Local files are not subject to the upload size cap.
func localOptions(sheet string) service.Options {
	opt := serviceOptions(currentConfig(), sheet, log)
	opt.MaxUploadBytes = math.MaxInt64
	return opt
}

// newLocalService builds a Service over a fresh in-memory store.
func newLocalService(opt service.Options) *service.Service {
	c := currentConfig()
	store := workspace.NewStore(workspace.Options{IdleTTL: time.Duration(c.SessionIdleMinutes) * time.Minute})
	return service.New(store, opt)
}

func serviceOptions(c *cfgpkg.Global, sheet string, l *slog.Logger) service.Options {
	return service.Options{
		UploadDir:      c.UploadDir,
		MaxUploadBytes: c.MaxUploadBytes(),
		Preview:        previewOptions(c),
		Bins:           c.HistogramBins,
		Delimiter:      c.Delimiter(),
		Sheet:          sheet,
		Logger:         l,
	}
}

func previewOptions(c *cfgpkg.Global) analysis.PreviewOptions {
	return analysis.PreviewOptions{Limit: c.PreviewRows, MaxChars: c.PreviewMaxChars}
}

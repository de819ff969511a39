package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datadeck/internal/server"
	"github.com/KaramelBytes/datadeck/internal/service"
	"github.com/KaramelBytes/datadeck/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

var (
	serveListen    string
	serveUploadDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload, chart, preview and stats endpoints over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if serveListen != "" {
			c.ListenAddr = serveListen
		}
		if serveUploadDir != "" {
			c.UploadDir = serveUploadDir
		}
		if err := os.MkdirAll(c.UploadDir, 0o755); err != nil {
			return fmt.Errorf("mkdir upload dir: %w", err)
		}

		store := workspace.NewStore(workspace.Options{IdleTTL: time.Duration(c.SessionIdleMinutes) * time.Minute})
		svc := service.New(store, serviceOptions(c, "", log))
		srv := server.New(svc, server.Config{
			Addr:             c.ListenAddr,
			UploadsPerMinute: c.UploadsPerMinute,
			CORSOrigins:      c.CORSOrigins,
		}, log)

		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()
		log.Info("datadeck ready", "addr", c.ListenAddr, "upload_dir", c.UploadDir, "max_upload_mb", c.MaxUploadMB)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from config, :5000)")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "", "directory for staged uploads (default from config)")
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/barlabel/internal/server"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the barcode HTTP server",
		Long: `Serve exposes barcode rendering over HTTP.

Endpoints:
  GET /barcode?type=ean13&data=590123412345&width=300&height=150&format=png
  GET /healthz
  GET /metrics   (Prometheus)

Every render flag of "barlabel render" is accepted as a query parameter
(width, height, dpi, label, show_label, font, style, size, position, align,
fore, back, rotate, flip, format).`,
		Example: `  barlabel serve --port 8080
  BARLABEL_SERVER_MAX_WIDTH=2000 barlabel serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), root)
		},
	}

	fs := cmd.Flags()
	fs.String("host", "", "host to bind (default from config)")
	fs.IntP("port", "p", 0, "port to listen on (default from config)")
	fs.Int("timeout", 0, "read/write timeout in seconds (default from config)")

	v := root.loader.Viper()
	_ = v.BindPFlag("server.host", fs.Lookup("host"))
	_ = v.BindPFlag("server.port", fs.Lookup("port"))
	_ = v.BindPFlag("server.timeout_sec", fs.Lookup("timeout"))
	return cmd
}

func runServe(ctx context.Context, root *rootOptions) error {
	defaults, err := root.cfg.Render.Options()
	if err != nil {
		return fmt.Errorf("invalid render configuration: %w", err)
	}
	sc := root.cfg.Server
	config := server.Config{
		Host:       sc.Host,
		Port:       sc.Port,
		TimeoutSec: sc.TimeoutSec,
		MaxWidth:   sc.MaxWidth,
		MaxHeight:  sc.MaxHeight,
		Version:    Version,
		Defaults:   defaults,
	}
	barcodeServer, err := server.NewServer(config, root.generator(""))
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	httpServer := server.NewHTTPServer(config, barcodeServer.Routes())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := root.logger
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting barcode server", "host", sc.Host, "port", sc.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}

	shutdownTimeout := time.Duration(sc.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Graceful shutdown completed")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

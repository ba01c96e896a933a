package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shelf-go/internal/app"
	"shelf-go/internal/httpapi"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bookmark API over HTTP",
	Args:  cobra.NoArgs,
	RunE: withApp("serve", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		listen, _ := cmd.Flags().GetString("listen")
		open, _ := cmd.Flags().GetBool("open")
		if listen == "" {
			listen = a.Config().Server.Listen
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.New(a, listen)
		errCh := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil {
				errCh <- fmt.Errorf("http server error: %w", err)
			}
		}()

		fmt.Fprintf(os.Stderr, "Serving on http://%s (Ctrl-C to stop)\n", listen)
		if open {
			if err := browser.OpenURL("http://" + listen + "/api/bookmarks"); err != nil {
				a.ZapLogger().Warn("opening browser", zap.Error(err))
			}
		}

		select {
		case <-ctx.Done():
			a.ZapLogger().Info("shutting down gracefully")
		case err := <-errCh:
			return err
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	}),
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().Bool("open", false, "Open the API in the browser once listening")
}

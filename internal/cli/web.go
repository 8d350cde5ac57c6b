package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"timeline-cli/internal/logging"
	"timeline-cli/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool
	var watch bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the timeline as HTML and JSON (no JS)",
		Long: strings.TrimSpace(`
Serve the timeline from a local HTTP server.

The query string uses the same keys as a shared link hash (project, tags,
mode, group), so '#timeline?tags=go&mode=tag' maps to '/?tags=go&mode=tag'.

Routes:
- GET /                     server-rendered timeline
- GET /api/timeline         display structures and connections as JSON
- GET /api/phases/{phaseId} one phase's display structure
- GET /api/connections      the connection overlay
- GET /health
`),
		Example: strings.TrimSpace(`
# Serve ./projects on localhost, reloading when files change
timeline --projects ./projects web --addr 127.0.0.1:3336

# Serve a SQLite manifest without opening a browser
timeline --projects portfolio.sqlite web --open=false
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = strings.TrimSpace(app.cfg.Web.Addr)
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}
			if !cmd.Flags().Changed("watch") {
				watch = app.cfg.Web.Watch
			}
			bundle, err := bundleConfig(app.cfg)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			log := logging.Component(app.log, "web")
			srv, err := web.NewServer(ctx, web.ServerConfig{
				Addr:    listenAddr,
				Path:    app.cfg.Projects.Path,
				Watch:   watch,
				Bundle:  bundle,
				Section: app.cfg.URL.Section,
				Logger:  log,
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"projects":  app.cfg.Projects.Path,
					"watch":     watch,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "Timeline web running at %s (projects=%s)\n", url, app.cfg.Projects.Path)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			go func() {
				if err := srv.WatchProjects(ctx); err != nil {
					log.Warn("watch stopped", slog.Any("err", err))
				}
			}()

			hs := &http.Server{Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
				defer done()
				_ = hs.Shutdown(shutdownCtx)
			}()
			if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default: web.addr)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the UI in your default browser")
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload when the projects directory changes (default: web.watch)")
	return cmd
}

func openPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("empty path")
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path).Run()
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Run()
	default:
		return exec.Command("xdg-open", path).Run()
	}
}

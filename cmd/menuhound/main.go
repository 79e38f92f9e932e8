// Command menuhound extracts daily lunch menus from restaurant websites.
//
// Two modes:
//
//	menuhound run    one-shot batch over the configured sites
//	menuhound serve  long-running HTTP API
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/menuhound/menuhound/api"
	"github.com/menuhound/menuhound/browser"
	"github.com/menuhound/menuhound/cache"
	"github.com/menuhound/menuhound/config"
	"github.com/menuhound/menuhound/models"
	"github.com/menuhound/menuhound/sampler"
	"github.com/menuhound/menuhound/store"
)

func main() {
	root := &cobra.Command{
		Use:           "menuhound",
		Short:         "Daily restaurant menu extraction pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		sitesPath  string
		onlySite   string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once over the configured sites and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if sitesPath != "" {
				cfg.SitesFile = sitesPath
			}
			initLogger(cfg.Log)

			sites, err := config.LoadSites(cfg.SitesFile)
			if err != nil {
				return err
			}
			if onlySite != "" {
				sites = filterSites(sites, onlySite)
				if len(sites) == 0 {
					return fmt.Errorf("no configured site named %q", onlySite)
				}
			}

			if err := os.MkdirAll(cfg.ScreenshotDir, 0o755); err != nil {
				return fmt.Errorf("create screenshot dir: %w", err)
			}

			b, err := browser.New(cfg.Browser)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner := sampler.NewRunner(b, cfg.Sampler, cfg.ScreenshotDir, cfg.Browser.DefaultProxy)
			results, err := runner.RunAll(ctx, sites)
			if err != nil {
				return err
			}

			if cfg.Store.Path != "" {
				if err := persistResults(ctx, cfg.Store.Path, results); err != nil {
					slog.Warn("failed to persist results", "error", err)
				}
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			printSummary(results)
			return nil
		},
	}

	cmd.Flags().StringVar(&sitesPath, "sites", "", "path to the sites YAML file (overrides MENUHOUND_SITES)")
	cmd.Flags().StringVar(&onlySite, "site", "", "run only the named site")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON instead of a summary")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			initLogger(cfg.Log)

			sites, err := config.LoadSites(cfg.SitesFile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.ScreenshotDir, 0o755); err != nil {
				return fmt.Errorf("create screenshot dir: %w", err)
			}

			b, err := browser.New(cfg.Browser)
			if err != nil {
				return err
			}
			defer b.Close()

			var st *store.Store
			if cfg.Store.Path != "" {
				st, err = store.Open(cfg.Store.Path)
				if err != nil {
					return err
				}
				defer st.Close()
			}

			runner := sampler.NewRunner(b, cfg.Sampler, cfg.ScreenshotDir, cfg.Browser.DefaultProxy)
			router := api.NewRouter(cfg, runner, sites, st, cache.New(cfg.Cache.TTL))

			srv := &http.Server{
				Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("API server listening",
					"addr", srv.Addr, "sites", len(sites), "auth", cfg.Auth.Enabled)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("shutdown signal received, draining connections")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Error("server shutdown failed", "error", err)
			}
			return nil
		},
	}
}

// initLogger configures the process-wide slog default.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func filterSites(sites []models.Site, name string) []models.Site {
	var out []models.Site
	for _, s := range sites {
		if s.Name == name {
			s.Enabled = true
			out = append(out, s)
		}
	}
	return out
}

func persistResults(ctx context.Context, path string, results []models.SiteResult) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()

	for _, res := range results {
		if err := st.Save(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(results []models.SiteResult) {
	for _, res := range results {
		status := "OK"
		if !res.Success {
			status = "FAIL"
		}
		fmt.Printf("%-6s %-24s items=%-3d", status, res.Site, len(res.Items))
		if res.Error != "" {
			fmt.Printf(" error=%s", res.Error)
		}
		fmt.Println()
		for _, item := range res.Items {
			fmt.Printf("       %s | %s | %s\n", item.Category, item.Name, item.Price)
		}
	}
}

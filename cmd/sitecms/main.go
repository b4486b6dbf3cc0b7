// Command sitecms runs the website and manages its site content.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shieldfoundation/sitecms"
	"github.com/shieldfoundation/sitecms/views"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	logLevel string
	dbPath   string
)

var rootCmd = &cobra.Command{
	Use:   "sitecms",
	Short: "Website and content management backend for the Shield Foundation site",
	Long: `sitecms serves the public website, the public JSON API and the admin API.

Configuration comes from the environment (a .env file is read when present):
  SITE_NAME, SITE_URL, ADDR, DATABASE_PATH, STATIC_DIR,
  ADMIN_PASSWORD, SESSION_SECRET, JWT_SECRET, TOKEN_TTL, LOG_LEVEL, ...`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sitecms version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitecms %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DATABASE_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (sitecms.SiteConfig, error) {
	cfg, err := sitecms.LoadConfig()
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app := sitecms.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	if app.Logger != nil {
		app.Logger.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		if app.Logger != nil {
			app.Logger.Error("shutdown", zap.Error(err))
		}
		return err
	}
	return <-errc
}

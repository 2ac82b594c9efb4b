// vibetodo: hierarchical task tracker.
//
// Projects contain epics, epics contain features, features contain
// tasks. One core implementation is exposed over two transports:
//
//	vibetodo serve   # REST API
//	vibetodo mcp     # MCP tool server (stdio transport)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/vibetodo/vibetodo/internal/auth"
	"github.com/vibetodo/vibetodo/internal/config"
	"github.com/vibetodo/vibetodo/internal/httpapi"
	"github.com/vibetodo/vibetodo/internal/server"
	"github.com/vibetodo/vibetodo/internal/store"
	"github.com/vibetodo/vibetodo/internal/store/memstore"
	storemongo "github.com/vibetodo/vibetodo/internal/store/mongo"
	storesqlite "github.com/vibetodo/vibetodo/internal/store/sqlite"
	"github.com/vibetodo/vibetodo/internal/todo"
)

func main() {
	root := &cobra.Command{
		Use:     "vibetodo",
		Short:   "Hierarchical task tracker: projects > epics > features > tasks",
		Version: server.Version,
	}
	root.AddCommand(serveCmd(), mcpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// storeFlags registers the store-selection flags shared by both
// transports. Flag names double as config keys; VIBETODO_* environment
// variables fill in anything not set on the command line.
func storeFlags(cmd *cobra.Command) {
	cmd.Flags().String("store-backend", "sqlite", "document store backend: memory, sqlite or mongo")
	cmd.Flags().String("sqlite-path", "vibetodo.db", "path of the sqlite database file")
	cmd.Flags().String("mongo-uri", "mongodb://localhost:27017", "MongoDB connection URI")
	cmd.Flags().String("mongo-database", "vibe_todo_manager", "MongoDB database name")
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
	storeFlags(cmd)
	cmd.Flags().String("listen-addr", ":3001", "address the HTTP server listens on")
	cmd.Flags().Bool("auth-enabled", false, "require bearer tokens and expose /auth routes")
	cmd.Flags().String("jwt-secret", "", "HMAC secret for signing tokens (required with --auth-enabled)")
	cmd.Flags().String("cors-origin", "*", "allowed CORS origin")
	cmd.Flags().String("log-file", "", "rotating log file (default: stdout)")
	return cmd
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP tool server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return runMCP(cfg)
		},
	}
	storeFlags(cmd)
	return cmd
}

func runServe(cfg config.Config) error {
	setupLogging(cfg.LogFile)

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	svc := todo.NewService(st, slog.Default())

	opts := httpapi.Options{AuthEnabled: cfg.AuthEnabled, CORSOrigin: cfg.CORSOrigin}
	if cfg.AuthEnabled {
		opts.Auth = auth.NewService(st.Users(), cfg.JWTSecret, cfg.TokenTTL)
	}
	api := httpapi.NewServer(svc, opts)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown on interrupt.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("listening", "addr", cfg.ListenAddr, "store", cfg.StoreBackend, "auth", cfg.AuthEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runMCP(cfg config.Config) error {
	// Logs go to stderr so the stdio transport keeps stdout clean.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	ctx := context.Background()
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	svc := todo.NewService(st, slog.Default())
	return mcpserver.ServeStdio(server.New(svc))
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return memstore.New(), nil
	case "sqlite":
		return storesqlite.Open(cfg.SQLitePath)
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return storemongo.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func setupLogging(logFile string) {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, nil)))
}

// cmd/api/main.go
//
// VP API – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (.env → conf/global.yaml → VP_ env overrides).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Resolve the database password, through Vault when the config value
//     carries the vault: prefix.
//
//  4. Open the MySQL pool and apply embedded schema migrations.
//
//  5. Open the GeoLite2 database when configured.
//
//  6. Build the router (security headers → request telemetry → access log
//     → identity), wrap it with ForceHTTPS, and serve with hardened
//     timeouts until SIGINT/SIGTERM, then drain gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/volunteerpeel/vp-api/internal/api"
	"github.com/volunteerpeel/vp-api/internal/blob"
	"github.com/volunteerpeel/vp-api/internal/config"
	"github.com/volunteerpeel/vp-api/internal/database"
	"github.com/volunteerpeel/vp-api/internal/logger"
	"github.com/volunteerpeel/vp-api/internal/middleware"
	"github.com/volunteerpeel/vp-api/internal/migrate"
	"github.com/volunteerpeel/vp-api/internal/requestinfo"
	"github.com/volunteerpeel/vp-api/internal/server"
	"github.com/volunteerpeel/vp-api/internal/vault"
)

// vaultTTL caches resolved secrets across config reloads.
const vaultTTL = 10 * time.Minute

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Database connect ────────────────────────────────────────────
	//
	password, err := resolveSecret(ctx, cfg.Database.Password, logOut.Infof)
	if err != nil {
		logOut.Fatalw("resolve database password", "err", err)
	}
	dsn := fmt.Sprintf(cfg.Database.DSN, password)

	db, err := database.Open(dsn)
	if err != nil {
		logOut.Fatalw("connect database", "err", err)
	}
	defer db.Close()
	logOut.Infow("database online")

	if err := migrate.Up(db); err != nil {
		logOut.Fatalw("apply migrations", "err", err)
	}

	//
	// ── 2.  Request telemetry ───────────────────────────────────────────
	//
	if cfg.Geo.Database != "" {
		if err := requestinfo.InitGeo(cfg.Geo.Database); err != nil {
			logOut.Warnw("geo database unavailable", "path", cfg.Geo.Database, "err", err)
		}
	}

	//
	// ── 3.  HTTP server ─────────────────────────────────────────────────
	//
	blobs := blob.NewDisk(cfg.Blob.Dir, cfg.Blob.BaseURL)
	app := api.New(db, blobs, logOut)
	handler := middleware.ForceHTTPS(app.Router([]byte(cfg.Auth.Secret)))

	srv := server.New(cfg.HTTP.ListenAddr, handler)
	go func() {
		logOut.Infow("api online", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalw("http server", "err", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Errorw("shutdown incomplete", "err", err)
	}
}

// resolveSecret passes plain values through and resolves
// "vault:<mount>/<path>#<key>" references through the Vault client.
func resolveSecret(ctx context.Context, value string, logFn func(string, ...any)) (string, error) {
	const prefix = "vault:"
	if !strings.HasPrefix(value, prefix) {
		return value, nil
	}

	ref := strings.TrimPrefix(value, prefix)
	path, key, found := strings.Cut(ref, "#")
	if !found {
		return "", fmt.Errorf("vault reference %q is missing its #key suffix", value)
	}

	cli, err := vault.New(ctx, logFn)
	if err != nil {
		return "", err
	}
	return cli.GetKV(ctx, path, key, vaultTTL)
}

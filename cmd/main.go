package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saeidalz13/seabattle/api"
	"github.com/saeidalz13/seabattle/db"
	"github.com/saeidalz13/seabattle/db/sqlc"
	"github.com/saeidalz13/seabattle/internal/config"
	mb "github.com/saeidalz13/seabattle/models/battleship"
	mc "github.com/saeidalz13/seabattle/models/connection"
)

const shutdownTimeout = time.Second * 10

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogger(cfg.Stage)

	fleets, err := config.LoadFleets(cfg.FleetsFile)
	if err != nil {
		return fmt.Errorf("loading fleets: %w", err)
	}
	slog.Info("config loaded",
		"stage", cfg.Stage,
		"port", cfg.Port,
		"boardSizes", mb.SupportedBoardSizes(fleets),
		"computerDelay", cfg.ComputerDelay)

	rpOpts := []api.RequestProcessorOption{api.WithComputerDelay(cfg.ComputerDelay)}
	if cfg.DatabaseUrl != "" {
		database := db.MustConnectToDb(cfg.DatabaseUrl, cfg.MigrationDir)
		defer database.Close()

		dbm := sqlc.NewDbManager(sqlc.New(database), api.ServerIpNet())
		rpOpts = append(rpOpts, api.WithAnalytics(dbm.Analytics))
		slog.Info("analytics enabled", "serverIp", serverIpString(dbm.Analytics))
	} else {
		slog.Warn("DATABASE_URL not set, analytics disabled")
	}

	bsm := mc.NewBattleshipSessionManager(mc.WithCleanupInterval(cfg.SessionCleanupInterval))
	bgm := mb.NewBattleshipGameManager(fleets)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", api.NewRequestProcessor(bsm, bgm, rpOpts...))

	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bsm.CleanupPeriodically(gctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func setupLogger(stage string) {
	if stage == config.StageProd {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})))
		return
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

func serverIpString(am *sqlc.AnalyticsManager) string {
	serverIp := am.ServerIp()
	return serverIp.IPNet.String()
}

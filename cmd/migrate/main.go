package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/lib/logger"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/storage/migrations"
)

func main() {
	cfg := config.MustLoad("migrate", os.Args[1:])
	log := logger.Setup(cfg.Env, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	applied, err := migrations.Apply(ctx, db, log)
	if err != nil {
		log.Error("migration failed", sl.Err(err))
		os.Exit(1)
	}
	log.Info("migrations done", slog.Int("applied", len(applied)))
}

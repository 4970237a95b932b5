package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	adminapi "github.com/Domenick1991/travelbooking/internal/api/admin_service_api"
	"github.com/Domenick1991/travelbooking/internal/bootstrap"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/identity"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lib/logger"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/notify"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/sweeper"
	"github.com/Domenick1991/travelbooking/internal/service/trips"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

func main() {
	cfg := config.MustLoad("app", os.Args[1:])
	log := logger.Setup(cfg.Env, os.Stdout)

	log.Info("starting travelbooking api", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer pool.Close()

	store := repository.NewStore(pool)

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.TripsCacheTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.Warn("redis unavailable, trips are served uncached until it recovers", sl.Err(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	emitter := notify.NewEmitter(log, store.Notifications(), store.Profiles(),
		notify.WithPublisher(producer, cfg.Kafka.NotificationsTopic),
	)

	waitlistService := waitlist.NewService(log, store, emitter)
	bookingService := booking.NewBookingService(log, store, waitlistService, payment.NewStubProcessor(), emitter,
		booking.WithMaxUpcoming(cfg.Booking.MaxUpcomingBookings),
	)
	tripService := trips.NewTripService(log, store, waitlistService, trips.WithCache(redisCache))
	sweep := sweeper.New(log, store.Bookings(), bookingService,
		sweeper.WithLocker(redisCache),
		sweeper.WithInterval(cfg.Worker.SweepInterval()),
		sweeper.WithGrace(cfg.Booking.PaymentGrace()),
	)

	verifier, err := identity.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		log.Error("failed to init token verifier", sl.Err(err))
		os.Exit(1)
	}
	defer verifier.Close()

	err = bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Log:      log,
		Verifier: verifier,
		API: api.Services{
			Trips:         tripService,
			Waitlist:      waitlistService,
			Bookings:      bookingService,
			Cart:          bookingService,
			Notifications: bookingService,
		},
		Admin: adminapi.NewServer(log, tripService, bookingService, waitlistService, sweep),
	})
	if err != nil {
		log.Error("server error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("travelbooking api stopped")
}

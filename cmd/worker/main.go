package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/cache"
	"github.com/Domenick1991/travelbooking/internal/email"
	"github.com/Domenick1991/travelbooking/internal/kafka"
	"github.com/Domenick1991/travelbooking/internal/lib/logger"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
	"github.com/Domenick1991/travelbooking/internal/notify"
	"github.com/Domenick1991/travelbooking/internal/payment"
	"github.com/Domenick1991/travelbooking/internal/repository"
	"github.com/Domenick1991/travelbooking/internal/service/booking"
	"github.com/Domenick1991/travelbooking/internal/service/sweeper"
	"github.com/Domenick1991/travelbooking/internal/service/waitlist"
)

func main() {
	cfg := config.MustLoad("worker", os.Args[1:])
	log := logger.Setup(cfg.Env, os.Stdout)

	log.Info("starting travelbooking worker", slog.String("env", cfg.Env))

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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()

	emitter := notify.NewEmitter(log, store.Notifications(), store.Profiles(),
		notify.WithPublisher(producer, cfg.Kafka.NotificationsTopic),
	)
	waitlistService := waitlist.NewService(log, store, emitter)
	bookingService := booking.NewBookingService(log, store, waitlistService, payment.NewStubProcessor(), emitter)

	sweep := sweeper.New(log, store.Bookings(), bookingService,
		sweeper.WithLocker(redisCache),
		sweeper.WithInterval(cfg.Worker.SweepInterval()),
		sweeper.WithGrace(cfg.Booking.PaymentGrace()),
	)

	var sender email.Sender = email.NewLogSender(log)
	if cfg.Email.SMTPHost != "" {
		sender = email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
		})
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweep.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := consumer.ConsumeNotifications(ctx, sender.Send); err != nil {
			log.Error("notification consumer stopped", sl.Err(err))
			stop()
		}
	}()

	wg.Wait()
	log.Info("travelbooking worker stopped")
}

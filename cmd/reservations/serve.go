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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/catalog"
	"github.com/example/room-reservations/internal/config"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/notification"
)

func newServeCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the reminder worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	logger := c.logger

	store, err := openStore(ctx, c.cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	directory, err := application.MockDirectory(application.DefaultArgon2idParams)
	if err != nil {
		return fmt.Errorf("failed to build user directory: %w", err)
	}

	notifier, closeNotifier, err := buildNotifier(c.cfg, directory, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeNotifier(); cerr != nil {
			logger.Error("failed to close notifiers", "error", cerr)
		}
	}()

	reservations := c.reservationService(store, notifier)
	auth := application.NewAuthServiceWithLogger(directory, application.VerifyPassword, c.now, logger)

	worker := notification.NewReminderWorker(reservations, notifier, c.cfg.ReminderInterval, c.now, logger)
	if err := worker.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if serr := worker.Stop(); serr != nil {
			logger.Error("failed to stop reminder worker", "error", serr)
		}
	}()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Sessions:     httptransport.NewSessionHandler(auth, logger),
		Rooms:        httptransport.NewRoomHandler(catalog.Default(), reservations, logger),
		Reservations: httptransport.NewReservationHandler(reservations, c.now, logger),
		Validator:    auth,
		Metrics:      promhttp.Handler(),
		Health:       store.Ping,
		Logger:       logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.RecordMetrics(),
		},
	})

	server := &http.Server{
		Addr:              c.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr, "store", c.cfg.Store, "slot", c.cfg.Slot)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server encountered error: %w", err)
	}
	return nil
}

// buildNotifier always logs events and adds broker and mail delivery when
// configured, each behind its own circuit breaker.
func buildNotifier(cfg config.Config, directory *application.Directory, logger *slog.Logger) (notification.Notifier, func() error, error) {
	chain := notification.Multi{notification.NewLogNotifier(logger)}
	closeAll := func() error { return nil }

	if cfg.AMQPURL != "" {
		broker, err := notification.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to message broker: %w", err)
		}
		chain = append(chain, notification.NewBreaker(broker, notification.DefaultBreakerConfig("amqp"), logger))
		closeAll = broker.Close
	}

	if cfg.SMTP.Enabled() {
		mail := notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, directory.EmailAddress, logger)
		chain = append(chain, notification.NewBreaker(mail, notification.DefaultBreakerConfig("smtp"), logger))
	}

	return chain, closeAll, nil
}

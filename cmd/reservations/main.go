package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/catalog"
	"github.com/example/room-reservations/internal/config"
	"github.com/example/room-reservations/internal/logging"
	"github.com/example/room-reservations/internal/notification"
	"github.com/example/room-reservations/internal/persistence"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand once configuration is loaded.
type cli struct {
	envFile string
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "reservations",
		Short:         "Meeting room reservation service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if c.envFile != "" {
				files = append(files, c.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), c.logger))
			c.logger.Debug("command start", "command", cmd.CommandPath(), "store", cfg.Store)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.envFile, "env-file", "", "load environment variables from this file")

	root.AddCommand(
		newServeCommand(c),
		newMigrateCommand(c),
		newResetCommand(c),
		newSeedCommand(c),
		newSlotsCommand(c),
	)
	return root
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// now reads the wall clock in the configured business time zone.
func (c *cli) now() time.Time {
	loc := c.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

func (c *cli) reservationService(store persistence.SlotStore, notifier notification.Notifier) *application.ReservationService {
	return application.NewReservationServiceWithLogger(store, c.cfg.Slot, catalog.Default(), notifier, uuid.NewString, c.now, c.logger)
}

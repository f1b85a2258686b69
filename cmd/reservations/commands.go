package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/room-reservations/internal/config"
	"github.com/example/room-reservations/internal/notification"
)

func newMigrateCommand(c *cli) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Store != config.StoreSQLite {
				return fmt.Errorf("migrate requires the sqlite store, configured store is %q", c.cfg.Store)
			}
			ctx := cmd.Context()

			storage, err := openSQLite(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			if !statusOnly {
				if err := storage.Migrate(ctx); err != nil {
					return fmt.Errorf("failed to apply migrations: %w", err)
				}
			}

			status, err := storage.MigrationStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to read migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "current version: %s\n", status.CurrentVersion)
			for _, applied := range status.AppliedMigrations {
				fmt.Fprintf(out, "applied %s at %s\n", applied.Version, applied.AppliedAt.UTC().Format("2006-01-02 15:04:05"))
			}
			for _, pending := range status.PendingMigrations {
				fmt.Fprintf(out, "pending %s %s\n", pending.Version, pending.Description)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "only report applied and pending migrations")
	return cmd
}

func newResetCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every stored reservation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := c.reservationService(store, notification.NewLogNotifier(c.logger)).Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared slot %s\n", c.cfg.Slot)
			return nil
		},
	}
}

func newSeedCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace stored reservations with the demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			seeded, err := c.reservationService(store, notification.NewLogNotifier(c.logger)).Seed(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range seeded {
				fmt.Fprintf(out, "%s\t%s\t%s %s\t%s\t%s\n", r.ID, r.RoomName, r.Date, r.Window(), r.Status, r.Title)
			}
			return nil
		},
	}
}

func newSlotsCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "slots ROOM_ID DATE",
		Short: "Print the free start times of a room on a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := openStore(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer store.Close()

			slots, err := c.reservationService(store, notification.NewLogNotifier(c.logger)).AvailableSlots(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			labels := make([]string, len(slots))
			for i, slot := range slots {
				labels[i] = slot.String()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(labels, " "))
			return nil
		},
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/esf/gestao-esf/internal/catalog"
	"github.com/esf/gestao-esf/internal/config"
	"github.com/esf/gestao-esf/internal/platform/db"
	"github.com/esf/gestao-esf/internal/platform/notification"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gestao-esf",
		Short:         "Gestão eSF notification and reference data server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(catalogCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(versionCmd())
	return root
}

func newLogger(env string, out io.Writer) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			return runServer(migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving (postgres backend)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres document store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator) error {
				count, err := m.Up(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s).\n", count)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return fmt.Errorf("get migration status: %w", err)
				}
				printMigrationStatus(cmd.OutOrStdout(), statuses)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(context.Context, *db.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, db.EmbeddedMigrations()))
}

func printMigrationStatus(w io.Writer, statuses []db.MigrationStatus) {
	fmt.Fprintf(w, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
	for _, s := range statuses {
		status := "pending"
		appliedAt := ""
		if s.Applied {
			status = "applied"
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the built-in reference data",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check the reference catalogs for inconsistencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := catalog.Validate(); err != nil {
				return fmt.Errorf("catalog is inconsistent:\n%w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"catalog ok: %d conditions, %d appointment types, %d prescription types, %d microareas\n",
				len(catalog.Conditions()), len(catalog.AppointmentTypes()),
				len(catalog.PrescriptionTypes()), len(catalog.Microareas()))
			return nil
		},
	})
	return cmd
}

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Publish a team notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			message, _ := cmd.Flags().GetString("message")
			typ, _ := cmd.Flags().GetString("type")

			category, err := notification.ParseCategory(typ)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Env, cmd.ErrOrStderr())

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			store, pool, err := buildStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore(store, pool, logger)

			res := notification.NewPublisher(store, cfg.AppID, logger).Publish(ctx, title, message, category)
			if err := json.NewEncoder(cmd.OutOrStdout()).Encode(res); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			if !res.Delivered {
				return errors.New("notification was not delivered")
			}
			return nil
		},
	}
	cmd.Flags().String("title", "", "Notification title")
	cmd.Flags().String("message", "", "Notification body")
	cmd.Flags().String("type", "info", "One of info, success, warning, alert, mural, agenda, patient")
	cmd.MarkFlagRequired("title")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Run: func(cmd *cobra.Command, args []string) {
			app := catalog.App()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", app.Name, app.Version)
			if log := catalog.Changelog(); len(log) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "latest release: %s (%s)\n", log[0].Version, log[0].Date)
			}
		},
	}
}

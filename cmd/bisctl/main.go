// Command bisctl runs operator tasks against the barangay database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/app"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/config"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
	"github.com/ovaphlow/pitchfork/service-barangay/internal/user"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/database"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string

	rootCmd = &cobra.Command{
		Use:           "bisctl",
		Short:         "Operator tasks for the barangay information service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, lg *zap.SugaredLogger) error {
				if err := a.Migrate(ctx); err != nil {
					return err
				}
				lg.Info("schema is up to date")
				return nil
			})
		},
	}

	seedAdminCmd = &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the first administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, lg *zap.SugaredLogger) error {
				u, err := a.Users.Create(ctx, user.CreateInput{
					FullName: adminName,
					Email:    adminEmail,
					Password: adminPassword,
					Role:     identity.RoleAdmin,
				})
				if err != nil {
					if apperr.KindOf(err) == apperr.KindConflict {
						lg.Infow("admin already exists", "email", adminEmail)
						return nil
					}
					return err
				}
				lg.Infow("admin created", "id", u.ID, "email", u.Email)
				return nil
			})
		},
	}

	seedTemplateCmd = &cobra.Command{
		Use:   "seed-template",
		Short: "Insert the default certificate template when none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, lg *zap.SugaredLogger) error {
				added, err := a.Templates.SeedDefault(ctx)
				if err != nil {
					return err
				}
				lg.Infow("default template", "added", added)
				return nil
			})
		},
	}

	backfillCmd = &cobra.Command{
		Use:   "backfill-references",
		Short: "Assign reference numbers to certificate requests that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, lg *zap.SugaredLogger) error {
				n, err := a.Certificates.BackfillReferences(ctx)
				if err != nil {
					return err
				}
				lg.Infow("backfill finished", "assigned", n)
				return nil
			})
		},
	}
)

func init() {
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "admin@barangay.local", "administrator email")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password (min 6 characters)")
	seedAdminCmd.Flags().StringVar(&adminName, "name", "System Administrator", "administrator full name")
	_ = seedAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, seedAdminCmd, seedTemplateCmd, backfillCmd)
}

// withApp loads config, opens the database and hands a wired App to fn.
func withApp(ctx context.Context, fn func(context.Context, *app.App, *zap.SugaredLogger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer lg.Sync()
	if err := utilities.SetSnowflakeNode(cfg.SnowflakeNode); err != nil {
		return err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()
	return fn(ctx, app.New(cfg, db, lg.Sugar()), lg.Sugar())
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "bisctl: %v\n", err)
		os.Exit(1)
	}
}

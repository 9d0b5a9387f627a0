package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auditlink/internal/jwttoken"
	"auditlink/internal/platform/config"
	"auditlink/internal/platform/logger"
	"auditlink/internal/platform/postgres"
	id "auditlink/pkg/domain"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "auditlink",
		Short:         "AuditLink claim ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ledger API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log, appOptions{migrate: migrate})
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (postgres storage)")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the ledger database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
				n, err := m.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range statuses {
					state := "pending"
					if s.Applied && s.AppliedAt != nil {
						state = "applied " + s.AppliedAt.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(out, "%03d %-24s %s\n", s.Version, s.Name, state)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func withMigrator(ctx context.Context, fn func(context.Context, *postgres.Migrator) error) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("AUDITLINK_DATABASE_URL is required for migrations")
	}
	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, postgres.NewMigrator(db))
}

// tokenCmd mints a bearer token for local use. Sign-in lives outside this
// service, so this is the only way to get a token in development.
func tokenCmd() *cobra.Command {
	var (
		principal string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			p, err := id.ParsePrincipal(principal)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.JWT.TokenTTL
			}
			svc := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
			token, err := svc.GenerateAccessToken(p, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "principal the token identifies (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to AUDITLINK_JWT_TOKEN_TTL)")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	jwttoken "kycgate/internal/jwt_token"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/logger"
	"kycgate/internal/platform/postgres"
	"kycgate/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "kycgate",
	Short: "Verification case service",
	Long:  `Tracks KYC and legal verification cases and gates panel access on their status.`,
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API and the outbox relay",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Applies the embedded schema to DATABASE_URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for migrate")
		}
		log := logger.New(cfg.LogLevel)

		db, err := postgres.Open(cmd.Context(), cfg.DatabaseURL, postgres.Options{})
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.Migrate(cmd.Context(), db)
		if err != nil {
			return err
		}
		log.Info("migrations applied", "count", len(applied), "names", applied)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Prints a signed bearer token for local testing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		actorFlag, _ := cmd.Flags().GetString("actor")
		roleFlag, _ := cmd.Flags().GetString("role")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		actor, err := domain.ParseActorID(actorFlag)
		if err != nil {
			return err
		}
		role, err := domain.ParseRole(roleFlag)
		if err != nil {
			return err
		}
		token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer).GenerateAccessToken(actor, role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	return serve(cmd.Context(), cfg)
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd)
	rootCmd.PersistentFlags().String("addr", "", "Address to listen on, overrides KYC_ADDR")
	tokenCmd.Flags().String("actor", "", "Actor id placed in the token subject")
	tokenCmd.Flags().String("role", string(domain.RoleOwner), "OWNER or REVIEWER")
	tokenCmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("actor")
}

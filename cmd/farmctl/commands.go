package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/config"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/database"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/security"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"github.com/vcscsvcscs/digital-farm/apps/backend/pkg/model"
	"go.uber.org/zap"
)

// seedActor is the identity recorded for catalog entries loaded by farmctl
var seedActor = model.Identity{UserID: "farmctl", Role: model.RoleAuthority}

func connect(ctx context.Context) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns: 2,
		MinConns: 1,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, pool, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := database.NewMigrator(pool, zap.NewNop()).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := database.NewMigrator(pool, zap.NewNop()).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.Applied {
					status = "applied"
					appliedAt = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func seedMedicinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-medicines <file.json>",
		Short: "Load authorized medicines from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := readMedicines(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			_, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := service.NewMedicineService(repository.NewMedicineRepository(pool, zap.NewNop()), zap.NewNop())
			created, skipped, err := seedMedicines(ctx, svc, inputs)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d medicine(s), skipped %d existing.\n", created, skipped)
			return nil
		},
	}
}

type medicineCreator interface {
	Create(ctx context.Context, actor model.Identity, in service.MedicineInput) (*model.AuthorizedMedicine, error)
}

func readMedicines(path string) ([]service.MedicineInput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var inputs []service.MedicineInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return inputs, nil
}

// seedMedicines creates every entry, skipping names that already exist
func seedMedicines(ctx context.Context, svc medicineCreator, inputs []service.MedicineInput) (created, skipped int, err error) {
	for i, in := range inputs {
		if _, err := svc.Create(ctx, seedActor, in); err != nil {
			if errors.Is(err, service.ErrConflict) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("entry %d: %w", i, err)
		}
		created++
	}
	return created, skipped, nil
}

func safetyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "safety <farmer_id>",
		Short: "Print the consumer safety status of a farmer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, pool, err := connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			encryptor, err := security.NewEncryptor([]byte(cfg.Security.EncryptionKey))
			if err != nil {
				return err
			}

			logger := zap.NewNop()
			svc := service.NewSafetyService(
				repository.NewFarmerRepository(pool, encryptor, logger),
				repository.NewAnimalRepository(pool, logger),
				repository.NewAlertRepository(pool, logger),
				logger,
			)

			res, err := svc.FarmerStatus(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.Role(role).Valid() {
				return fmt.Errorf("role must be one of farmer, vet, authority")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, err := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer).
				Sign(userID, model.Role(role), ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "Subject of the token")
	cmd.Flags().StringVar(&role, "role", string(model.RoleFarmer), "farmer, vet or authority")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

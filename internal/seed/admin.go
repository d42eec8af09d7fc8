// Package seed provisions the initial administrator account. Safe to run
// repeatedly.
package seed

import (
	"context"
	"errors"
	"fmt"

	"waterline/internal/auth"
	"waterline/internal/store"
	"waterline/pkg/types"

	"github.com/sirupsen/logrus"
)

// SentinelIDNumber marks the bootstrap administrator. Its presence means
// seeding already ran.
const SentinelIDNumber = "0000000000000"

func SeedAdmin(ctx context.Context, accountRepo *store.AccountRepository, config *types.Config, logger *logrus.Logger) error {
	existing, err := accountRepo.AccountByIDNumber(ctx, SentinelIDNumber)
	if err != nil && !errors.Is(err, types.ErrAccountNotFound) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if existing != nil {
		logger.WithField("id_number", SentinelIDNumber).Info("admin already exists, skipping seed")
		return nil
	}

	hash, err := auth.HashPassword(config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &types.Account{
		IDNumber:     SentinelIDNumber,
		FirstName:    "Admin",
		LastName:     "User",
		Email:        "admin@example.com",
		PhoneNumber:  "0123456789",
		Address:      "Admin Office",
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
	}

	if err := accountRepo.Create(ctx, admin); err != nil {
		// A concurrent seed run may have won the race.
		if errors.Is(err, types.ErrDuplicateIDNumber) {
			logger.Info("admin created concurrently, skipping seed")
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logger.WithField("id_number", admin.IDNumber).Info("admin account seeded")
	return nil
}

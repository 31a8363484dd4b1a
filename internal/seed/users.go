package seed

import (
	"context"
	"errors"
	"fmt"

	"cupboard/internal/store"
	"cupboard/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Username string
	Password string
	Role     types.Role
}

// Default accounts for local development. Rotate these before pointing
// the server at anything shared.
var seedUsers = []seedUser{
	{Username: "admin", Password: "admin123", Role: types.RoleManager},
	{Username: "helper", Password: "helper123", Role: types.RoleHelper},
}

func Users(ctx context.Context, userRepo *store.UserRepository) ([]*types.User, error) {
	created := make([]*types.User, 0, len(seedUsers))

	for _, su := range seedUsers {
		_, err := userRepo.UserByUsername(ctx, su.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, types.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to fetch seed user %s: %w", su.Username, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password for %s: %w", su.Username, err)
		}

		user := &types.User{
			Username:     su.Username,
			PasswordHash: string(hash),
			Role:         su.Role,
		}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create seed user %s: %w", su.Username, err)
		}

		created = append(created, user)
	}

	return created, nil
}

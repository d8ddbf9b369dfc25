package database

import (
	"context"
	"fmt"
	"os"

	"shareit/internal/domain"
	"shareit/internal/models"

	"gopkg.in/yaml.v2"
)

// Seed is the initial catalog loaded into an empty database.
type Seed struct {
	Users []models.User `yaml:"users"`
	Items []models.Item `yaml:"items"`
}

func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// ApplySeed inserts the seed when no users exist yet. Item owner ids in
// the seed refer to user ids as listed in the seed; they are remapped to
// the ids assigned on insert. It reports whether anything was written.
func (db *DB) ApplySeed(ctx context.Context, seed *Seed) (bool, error) {
	if seed == nil || len(seed.Users) == 0 {
		return false, nil
	}

	applied := false
	err := db.RunInTx(ctx, func(tx domain.Store) error {
		existing, err := tx.ListUsers(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		ids := make(map[int64]int64, len(seed.Users))
		for _, u := range seed.Users {
			user := models.User{Name: u.Name, Email: u.Email}
			if err := tx.CreateUser(ctx, &user); err != nil {
				return fmt.Errorf("seed user %s: %w", u.Email, err)
			}
			ids[u.ID] = user.ID
		}

		for _, it := range seed.Items {
			ownerID, ok := ids[it.OwnerID]
			if !ok {
				return fmt.Errorf("seed item %q references unknown owner %d", it.Name, it.OwnerID)
			}
			item := models.Item{Name: it.Name, Description: it.Description, Available: it.Available, OwnerID: ownerID}
			if err := tx.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("seed item %q: %w", it.Name, err)
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if applied {
		db.logger.Info().Int("users", len(seed.Users)).Int("items", len(seed.Items)).Msg("database seeded")
	}
	return applied, nil
}

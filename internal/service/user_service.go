package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserPatch struct {
	Name  *string
	Email *string
}

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) Create(ctx context.Context, name, email string) (*models.User, error) {
	if blank(name) || blank(email) {
		return nil, domain.ErrValidation.Withf("name and email are required")
	}

	user := &models.User{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		taken, err := tx.EmailTaken(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailExists.Withf("user with email %s already exists", user.Email)
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// Update changes only the non-blank fields of patch.
func (s *UserService) Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error) {
	var user *models.User
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		var err error
		if user, err = tx.GetUserByID(ctx, id); err != nil {
			return err
		}
		if patch.Name != nil && !blank(*patch.Name) {
			user.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil && !blank(*patch.Email) {
			email := strings.TrimSpace(*patch.Email)
			taken, err := tx.EmailTaken(ctx, email, id)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailExists.Withf("user with email %s already exists", email)
			}
			user.Email = email
		}
		return tx.UpdateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}

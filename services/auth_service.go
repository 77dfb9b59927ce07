package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/utils"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Profile, error)
	Login(ctx context.Context, input LoginInput) (*models.Profile, error)
}

type RegisterInput struct {
	Role           models.ProfileRole `json:"role"`
	RUN            string             `json:"run"`
	Email          string             `json:"email"`
	Phone          *string            `json:"phone,omitempty"`
	FirstName      string             `json:"first_name"`
	MiddleName     *string            `json:"middle_name,omitempty"`
	LastName       string             `json:"last_name"`
	SecondLastName string             `json:"second_last_name"`
	Password       string             `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	profileRepo repositories.ProfileRepository
	playerRepo  repositories.PlayerRepository
}

func NewAuthService(profileRepo repositories.ProfileRepository, playerRepo repositories.PlayerRepository) AuthService {
	return &authService{
		profileRepo: profileRepo,
		playerRepo:  playerRepo,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Profile, error) {
	if input.Role == "" {
		input.Role = models.RoleMember
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if !utils.IsValidRUN(input.RUN) {
		return nil, ErrInvalidRUN
	}
	if input.Phone != nil && *input.Phone != "" && !utils.IsValidPhone(*input.Phone) {
		return nil, ErrInvalidPhone
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Role:           input.Role,
		RUN:            utils.NormalizeRUN(input.RUN),
		Email:          input.Email,
		Phone:          input.Phone,
		FirstName:      input.FirstName,
		MiddleName:     input.MiddleName,
		LastName:       input.LastName,
		SecondLastName: input.SecondLastName,
		PasswordHash:   hash,
		Active:         true,
	}

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, mapRepositoryError(err)
	}

	profile.PasswordHash = ""
	return profile, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	if !profile.Active {
		return nil, ErrAccountDisabled
	}

	// Отключённый игровой профиль блокирует вход даже при активной учётке.
	if profile.Role == models.RolePlayer {
		player, err := s.playerRepo.GetByProfileID(ctx, profile.ID)
		if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("failed to check player status: %w", err)
		}
		if player != nil && !player.Active {
			return nil, ErrPlayerDisabled
		}
	}

	profile.PasswordHash = ""
	return profile, nil
}

package services

import (
	"context"
	"strings"
	"time"

	"github.com/sur-voley/club-system/eligibility"
	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
)

type PlayerInput struct {
	ProfileID int               `json:"profile_id"`
	TeamID    *int              `json:"team_id,omitempty"`
	BirthDate *time.Time        `json:"birth_date,omitempty"`
	BloodType *models.BloodType `json:"blood_type,omitempty"`
}

type PlayerService interface {
	CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int) (*models.Player, error)
	ListPlayers(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error)
	UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error)
	SetPlayerActive(ctx context.Context, id int, active bool) error
	// CheckEligibility runs the age check for an existing player against a
	// candidate team without persisting anything.
	CheckEligibility(ctx context.Context, playerID, teamID int) (eligibility.Result, error)
}

type playerService struct {
	playerRepo  repositories.PlayerRepository
	profileRepo repositories.ProfileRepository
	teamRepo    repositories.TeamRepository
	policy      eligibility.Policy
	now         func() time.Time
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	profileRepo repositories.ProfileRepository,
	teamRepo repositories.TeamRepository,
	policy eligibility.Policy,
) PlayerService {
	return &playerService{
		playerRepo:  playerRepo,
		profileRepo: profileRepo,
		teamRepo:    teamRepo,
		policy:      policy,
		now:         time.Now,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, input PlayerInput) (*models.Player, error) {
	if input.ProfileID == 0 {
		return nil, NewValidationError("profile_id", "profile_id is required")
	}
	if _, err := s.profileRepo.GetByID(ctx, input.ProfileID); err != nil {
		return nil, mapRepositoryError(err)
	}
	if input.BloodType != nil && !input.BloodType.Valid() {
		return nil, ErrInvalidBloodType
	}

	if err := s.validateTeamAssignment(ctx, input.TeamID, input.BirthDate); err != nil {
		return nil, err
	}

	player := &models.Player{
		ProfileID: input.ProfileID,
		TeamID:    input.TeamID,
		BirthDate: input.BirthDate,
		BloodType: input.BloodType,
		Active:    true,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetPlayerByID(ctx, player.ID)
}

func (s *playerService) GetPlayerByID(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if player.Profile != nil {
		player.Profile.PasswordHash = ""
	}
	return player, nil
}

func (s *playerService) ListPlayers(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	// Ключевые слова поиска переключают фильтр статуса, как в старых формах
	// клуба: "activo"/"inactivo" ищут по состоянию, не по тексту.
	switch strings.ToLower(strings.TrimSpace(filter.Search)) {
	case "activo", "active":
		active := true
		filter.Active = &active
		filter.Search = ""
	case "inactivo", "inactive":
		active := false
		filter.Active = &active
		filter.Search = ""
	}

	players, err := s.playerRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range players {
		if players[i].Profile != nil {
			players[i].Profile.PasswordHash = ""
		}
	}
	return players, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id int, input PlayerInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if input.BirthDate != nil {
		player.BirthDate = input.BirthDate
	}
	if input.BloodType != nil {
		if !input.BloodType.Valid() {
			return nil, ErrInvalidBloodType
		}
		player.BloodType = input.BloodType
	}
	if input.TeamID != nil {
		player.TeamID = input.TeamID
	}

	// Перепроверяем возраст против итогового состояния: смена даты рождения
	// может сделать текущую команду недопустимой.
	if err := s.validateTeamAssignment(ctx, player.TeamID, player.BirthDate); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetPlayerByID(ctx, id)
}

func (s *playerService) SetPlayerActive(ctx context.Context, id int, active bool) error {
	return mapRepositoryError(s.playerRepo.SetActive(ctx, id, active))
}

func (s *playerService) CheckEligibility(ctx context.Context, playerID, teamID int) (eligibility.Result, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return eligibility.Result{}, mapRepositoryError(err)
	}
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return eligibility.Result{}, mapRepositoryError(err)
	}

	var birthDate time.Time
	if player.BirthDate != nil {
		birthDate = *player.BirthDate
	}
	var slug string
	if team.Category != nil {
		slug = team.Category.Slug
	}
	return eligibility.Check(birthDate, slug, s.policy, s.now())
}

// validateTeamAssignment проверяет назначение в команду: команда должна
// существовать, а возраст игрока — проходить по категории команды. Без
// команды или без даты рождения проверка возраста пропускается.
func (s *playerService) validateTeamAssignment(ctx context.Context, teamID *int, birthDate *time.Time) error {
	if teamID == nil {
		return nil
	}
	team, err := s.teamRepo.GetByID(ctx, *teamID)
	if err != nil {
		return mapRepositoryError(err)
	}

	var birth time.Time
	if birthDate != nil {
		birth = *birthDate
	}
	var slug string
	if team.Category != nil {
		slug = team.Category.Slug
	}

	result, err := eligibility.Check(birth, slug, s.policy, s.now())
	if err != nil {
		return err
	}
	if !result.OK {
		return NewValidationError("team_id", result.Reason)
	}
	return nil
}

package services

import (
	"context"
	"fmt"
	"io"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/storage"
)

type TeamInput struct {
	Name       string `json:"name"`
	CategoryID int    `json:"category_id"`
	CoachID    int    `json:"coach_id"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context, filter repositories.ListTeamsFilter) ([]models.Team, error)
	UpdateTeam(ctx context.Context, id int, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int) error
	UploadCrest(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo    repositories.TeamRepository
	profileRepo repositories.ProfileRepository
	uploader    storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, profileRepo repositories.ProfileRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo:    teamRepo,
		profileRepo: profileRepo,
		uploader:    uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, NewValidationError("name", "team name is required")
	}
	if err := s.validateCoach(ctx, input.CoachID); err != nil {
		return nil, err
	}

	team := &models.Team{
		Name:       input.Name,
		CategoryID: input.CategoryID,
		CoachID:    input.CoachID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetTeamByID(ctx, team.ID)
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	populateTeamCrestURL(team, s.uploader)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, filter repositories.ListTeamsFilter) ([]models.Team, error) {
	teams, err := s.teamRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range teams {
		populateTeamCrestURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, id int, input TeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if input.Name != "" {
		team.Name = input.Name
	}
	if input.CategoryID != 0 {
		team.CategoryID = input.CategoryID
	}
	if input.CoachID != 0 && input.CoachID != team.CoachID {
		if err := s.validateCoach(ctx, input.CoachID); err != nil {
			return nil, err
		}
		team.CoachID = input.CoachID
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetTeamByID(ctx, id)
}

func (s *teamService) DeleteTeam(ctx context.Context, id int) error {
	return mapRepositoryError(s.teamRepo.Delete(ctx, id))
}

func (s *teamService) UploadCrest(ctx context.Context, id int, contentType string, reader io.Reader) (*models.Team, error) {
	if _, err := s.teamRepo.GetByID(ctx, id); err != nil {
		return nil, mapRepositoryError(err)
	}

	key := fmt.Sprintf("teams/%d/crest", id)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team crest: %w", err)
	}

	if err := s.teamRepo.UpdateCrestKey(ctx, id, &result.Key); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetTeamByID(ctx, id)
}

// validateCoach проверяет, что профиль существует, имеет роль coach и активен.
func (s *teamService) validateCoach(ctx context.Context, coachID int) error {
	coach, err := s.profileRepo.GetByID(ctx, coachID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if coach.Role != models.RoleCoach {
		return ErrCoachRoleRequired
	}
	if !coach.Active {
		return NewValidationError("coach_id", "coach profile is disabled")
	}
	return nil
}

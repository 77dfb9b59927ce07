package services

import (
	"context"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
)

type MarkAttendanceInput struct {
	PlayerID   int                     `json:"player_id"`
	ActivityID int                     `json:"activity_id"`
	Status     models.AttendanceStatus `json:"status"`
	MarkedAt   *time.Time              `json:"marked_at,omitempty"`
}

type AttendanceService interface {
	// MarkAttendance records presence/absence for a player at an activity.
	// recorderID is the authenticated user; only coaches can mark.
	MarkAttendance(ctx context.Context, input MarkAttendanceInput, recorderID int) (*models.Attendance, error)
	GetAttendanceByID(ctx context.Context, id int) (*models.Attendance, error)
	ListByActivity(ctx context.Context, activityID int) ([]models.Attendance, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Attendance, error)
	UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) (*models.Attendance, error)
	DeleteAttendance(ctx context.Context, id int) error
}

type attendanceService struct {
	attendanceRepo repositories.AttendanceRepository
	activityRepo   repositories.ActivityRepository
	playerRepo     repositories.PlayerRepository
	profileRepo    repositories.ProfileRepository
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo repositories.AttendanceRepository,
	activityRepo repositories.ActivityRepository,
	playerRepo repositories.PlayerRepository,
	profileRepo repositories.ProfileRepository,
) AttendanceService {
	return &attendanceService{
		attendanceRepo: attendanceRepo,
		activityRepo:   activityRepo,
		playerRepo:     playerRepo,
		profileRepo:    profileRepo,
		now:            time.Now,
	}
}

func (s *attendanceService) MarkAttendance(ctx context.Context, input MarkAttendanceInput, recorderID int) (*models.Attendance, error) {
	if !input.Status.Valid() {
		return nil, NewValidationError("status", "status must be P or A")
	}

	recorder, err := s.profileRepo.GetByID(ctx, recorderID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if recorder.Role != models.RoleCoach && recorder.Role != models.RoleAdmin {
		return nil, ErrCoachRoleRequired
	}

	activity, err := s.activityRepo.GetByID(ctx, input.ActivityID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if activity.Canceled {
		return nil, ErrActivityCanceled
	}

	player, err := s.playerRepo.GetByID(ctx, input.PlayerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !player.Active {
		return nil, ErrPlayerDisabled
	}

	// Игрок должен состоять в одной из команд-участниц активности.
	if !playerOnActivity(player, activity) {
		return nil, NewValidationError("player_id", "player's team is not part of this activity")
	}

	markedAt := s.now()
	if input.MarkedAt != nil {
		markedAt = *input.MarkedAt
	}
	if !withinActivityDates(markedAt, activity) {
		return nil, NewValidationError("marked_at", "marked_at falls outside the activity dates")
	}

	attendance := &models.Attendance{
		PlayerID:   input.PlayerID,
		ActivityID: input.ActivityID,
		CoachID:    recorderID,
		Status:     input.Status,
		MarkedAt:   markedAt,
	}
	if err := s.attendanceRepo.Create(ctx, attendance); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetAttendanceByID(ctx, attendance.ID)
}

func (s *attendanceService) GetAttendanceByID(ctx context.Context, id int) (*models.Attendance, error) {
	attendance, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return attendance, nil
}

func (s *attendanceService) ListByActivity(ctx context.Context, activityID int) ([]models.Attendance, error) {
	if _, err := s.activityRepo.GetByID(ctx, activityID); err != nil {
		return nil, mapRepositoryError(err)
	}
	attendances, err := s.attendanceRepo.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return attendances, nil
}

func (s *attendanceService) ListByPlayer(ctx context.Context, playerID int) ([]models.Attendance, error) {
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return nil, mapRepositoryError(err)
	}
	attendances, err := s.attendanceRepo.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return attendances, nil
}

func (s *attendanceService) UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) (*models.Attendance, error) {
	if !status.Valid() {
		return nil, NewValidationError("status", "status must be P or A")
	}
	if err := s.attendanceRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepositoryError(err)
	}
	return s.GetAttendanceByID(ctx, id)
}

func (s *attendanceService) DeleteAttendance(ctx context.Context, id int) error {
	return mapRepositoryError(s.attendanceRepo.Delete(ctx, id))
}

func playerOnActivity(player *models.Player, activity *models.Activity) bool {
	if player.TeamID == nil {
		return false
	}
	for _, team := range activity.Teams {
		if team.ID == *player.TeamID {
			return true
		}
	}
	return false
}

// withinActivityDates: отметка допустима с начала start_date до конца end_date.
func withinActivityDates(markedAt time.Time, activity *models.Activity) bool {
	from := dateOnly(activity.StartDate)
	until := dateOnly(activity.EndDate).AddDate(0, 0, 1)
	m := markedAt.UTC()
	return !m.Before(from) && m.Before(until)
}

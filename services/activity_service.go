package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
	"github.com/sur-voley/club-system/scheduling"
	"golang.org/x/sync/errgroup"
)

type ActivityInput struct {
	// ActivityID исключает саму активность при подборе тренеров для
	// редактирования. В теле запроса не передаётся.
	ActivityID  *int                `json:"-"`
	Title       string              `json:"title"`
	Kind        models.ActivityKind `json:"kind"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	StartTime   *time.Time          `json:"start_time,omitempty"`
	EndTime     *time.Time          `json:"end_time,omitempty"`
	Description *string             `json:"description,omitempty"`
	CoachID     *int                `json:"coach_id,omitempty"`
	TeamIDs     []int               `json:"team_ids"`
}

// ScheduleBroadcaster рассылает событие расписания подписчикам комнаты.
// Реализуется хабом пакета live.
type ScheduleBroadcaster interface {
	BroadcastToRoom(room string, message []byte)
}

type ActivityService interface {
	CreateActivity(ctx context.Context, input ActivityInput) (*models.Activity, error)
	GetActivityByID(ctx context.Context, id int) (*models.Activity, error)
	ListActivities(ctx context.Context, filter repositories.ListActivitiesFilter) ([]models.Activity, error)
	// ListUpcomingByTeam returns the team's non-canceled activities starting
	// today or later.
	ListUpcomingByTeam(ctx context.Context, teamID int) ([]models.Activity, error)
	UpdateActivity(ctx context.Context, id int, input ActivityInput) (*models.Activity, error)
	CancelActivity(ctx context.Context, id int, reason string) (*models.Activity, error)
	DeleteActivity(ctx context.Context, id int) error
	// AvailableCoaches returns active coaches not double-booked in the
	// candidate window described by the input.
	AvailableCoaches(ctx context.Context, input ActivityInput) ([]models.Profile, error)
	// SendUpcomingReminders mails every rostered player whose team has an
	// activity starting tomorrow. Called from the background scheduler.
	SendUpcomingReminders(ctx context.Context) error
}

type activityService struct {
	db           *sql.DB
	activityRepo repositories.ActivityRepository
	profileRepo  repositories.ProfileRepository
	playerRepo   repositories.PlayerRepository
	emailService EmailService
	broadcaster  ScheduleBroadcaster
	logger       *slog.Logger
	now          func() time.Time
}

func NewActivityService(
	db *sql.DB,
	activityRepo repositories.ActivityRepository,
	profileRepo repositories.ProfileRepository,
	playerRepo repositories.PlayerRepository,
	emailService EmailService,
	broadcaster ScheduleBroadcaster,
	logger *slog.Logger,
) ActivityService {
	return &activityService{
		db:           db,
		activityRepo: activityRepo,
		profileRepo:  profileRepo,
		playerRepo:   playerRepo,
		emailService: emailService,
		broadcaster:  broadcaster,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *activityService) CreateActivity(ctx context.Context, input ActivityInput) (*models.Activity, error) {
	activity, err := s.buildActivity(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.saveWithConflictCheck(ctx, activity, input.TeamIDs, func(tx *sql.Tx) error {
		return s.activityRepo.Create(ctx, tx, activity, input.TeamIDs)
	}); err != nil {
		return nil, err
	}

	created, err := s.GetActivityByID(ctx, activity.ID)
	if err != nil {
		return nil, err
	}
	s.broadcast("activity_created", created)
	return created, nil
}

func (s *activityService) GetActivityByID(ctx context.Context, id int) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if activity.Coach != nil {
		activity.Coach.PasswordHash = ""
	}
	return activity, nil
}

func (s *activityService) ListActivities(ctx context.Context, filter repositories.ListActivitiesFilter) ([]models.Activity, error) {
	activities, err := s.activityRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range activities {
		if activities[i].Coach != nil {
			activities[i].Coach.PasswordHash = ""
		}
	}
	return activities, nil
}

func (s *activityService) ListUpcomingByTeam(ctx context.Context, teamID int) ([]models.Activity, error) {
	activities, err := s.activityRepo.ListUpcomingByTeam(ctx, teamID, dateOnly(s.now()))
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	for i := range activities {
		if activities[i].Coach != nil {
			activities[i].Coach.PasswordHash = ""
		}
	}
	return activities, nil
}

func (s *activityService) UpdateActivity(ctx context.Context, id int, input ActivityInput) (*models.Activity, error) {
	current, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if current.Canceled {
		return nil, ErrActivityCanceled
	}

	activity, err := s.buildActivity(ctx, input)
	if err != nil {
		return nil, err
	}
	activity.ID = id

	if err := s.saveWithConflictCheck(ctx, activity, input.TeamIDs, func(tx *sql.Tx) error {
		return s.activityRepo.Update(ctx, tx, activity, input.TeamIDs)
	}); err != nil {
		return nil, err
	}

	updated, err := s.GetActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.broadcast("activity_updated", updated)
	return updated, nil
}

func (s *activityService) CancelActivity(ctx context.Context, id int, reason string) (*models.Activity, error) {
	if reason == "" {
		return nil, ErrCancelReasonRequired
	}
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if activity.Canceled {
		return nil, ErrActivityCanceled
	}

	if err := s.activityRepo.SetCanceled(ctx, id, reason); err != nil {
		return nil, mapRepositoryError(err)
	}

	canceled, err := s.GetActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.broadcast("activity_canceled", canceled)
	return canceled, nil
}

func (s *activityService) DeleteActivity(ctx context.Context, id int) error {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.activityRepo.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}
	s.broadcast("activity_deleted", activity)
	return nil
}

func (s *activityService) AvailableCoaches(ctx context.Context, input ActivityInput) ([]models.Profile, error) {
	if input.StartDate.IsZero() {
		return nil, NewValidationError("start_date", "start_date is required")
	}

	var (
		coaches  []models.Profile
		existing []models.Activity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		coaches, err = s.profileRepo.ListCoaches(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		existing, err = s.activityRepo.ListOnDate(gctx, s.db, dateOnly(input.StartDate))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepositoryError(err)
	}

	candidate := scheduling.Candidate{
		ActivityID: input.ActivityID,
		Kind:       input.Kind,
		Date:       dateOnly(input.StartDate),
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		TeamIDs:    input.TeamIDs,
	}
	freeIDs := scheduling.AvailableCoaches(candidate, coaches, existing)

	free := make([]models.Profile, 0, len(freeIDs))
	byID := make(map[int]models.Profile, len(coaches))
	for _, c := range coaches {
		c.PasswordHash = ""
		byID[c.ID] = c
	}
	for _, id := range freeIDs {
		if c, ok := byID[id]; ok {
			free = append(free, c)
		}
	}
	return free, nil
}

func (s *activityService) SendUpcomingReminders(ctx context.Context) error {
	tomorrow := dateOnly(s.now().AddDate(0, 0, 1))
	activities, err := s.activityRepo.ListOnDate(ctx, s.db, tomorrow)
	if err != nil {
		return mapRepositoryError(err)
	}

	for _, activity := range activities {
		if activity.Canceled {
			continue
		}
		recipients := make([]string, 0)
		seen := make(map[string]bool)
		for _, team := range activity.Teams {
			players, err := s.playerRepo.ListByTeamID(ctx, team.ID)
			if err != nil {
				s.logger.Error("failed to load team roster for reminder",
					slog.Int("team_id", team.ID), slog.Any("error", err))
				continue
			}
			for _, p := range players {
				if !p.Active || p.Profile == nil || p.Profile.Email == "" {
					continue
				}
				if !seen[p.Profile.Email] {
					seen[p.Profile.Email] = true
					recipients = append(recipients, p.Profile.Email)
				}
			}
		}
		if len(recipients) == 0 {
			continue
		}
		if err := s.emailService.SendActivityReminder(recipients, &activity); err != nil {
			s.logger.Error("failed to send activity reminder",
				slog.Int("activity_id", activity.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("activity reminder sent",
			slog.Int("activity_id", activity.ID), slog.Int("recipients", len(recipients)))
	}
	return nil
}

// buildActivity валидирует вход и собирает модель. Сюда стянуты все правила,
// общие для создания и редактирования.
func (s *activityService) buildActivity(ctx context.Context, input ActivityInput) (*models.Activity, error) {
	if input.Title == "" {
		return nil, ErrActivityTitleRequired
	}
	if !input.Kind.Valid() {
		return nil, ErrActivityKindInvalid
	}
	if len(input.TeamIDs) == 0 {
		return nil, ErrActivityTeamsRequired
	}
	if input.StartDate.IsZero() {
		return nil, NewValidationError("start_date", "start_date is required")
	}
	if input.EndDate.IsZero() {
		input.EndDate = input.StartDate
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, ErrActivityInvalidDateRange
	}
	if (input.StartTime == nil) != (input.EndTime == nil) {
		return nil, ErrActivityTimesIncomplete
	}
	if input.StartTime != nil && !timeOfDayBefore(*input.StartTime, *input.EndTime) {
		return nil, ErrActivityInvalidTimeRange
	}
	if input.CoachID != nil {
		coach, err := s.profileRepo.GetByID(ctx, *input.CoachID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if coach.Role != models.RoleCoach {
			return nil, ErrCoachRoleRequired
		}
	}

	return &models.Activity{
		Title:       input.Title,
		Kind:        input.Kind,
		StartDate:   dateOnly(input.StartDate),
		EndDate:     dateOnly(input.EndDate),
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Description: input.Description,
		CoachID:     input.CoachID,
	}, nil
}

// saveWithConflictCheck сериализует проверку и запись через советующую
// блокировку Postgres с ключом по дате начала: две конкурирующие записи на
// один день не проскочат между проверкой и вставкой. Уникальные ограничения
// в схеме остаются страховкой.
func (s *activityService) saveWithConflictCheck(ctx context.Context, activity *models.Activity, teamIDs []int, save func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", activity.StartDate.Unix()); err != nil {
		return fmt.Errorf("failed to acquire schedule lock: %w", err)
	}

	existing, err := s.activityRepo.ListOnDate(ctx, tx, activity.StartDate)
	if err != nil {
		return mapRepositoryError(err)
	}

	candidate := scheduling.Candidate{
		Kind:      activity.Kind,
		Date:      activity.StartDate,
		StartTime: activity.StartTime,
		EndTime:   activity.EndTime,
		TeamIDs:   teamIDs,
		CoachID:   activity.CoachID,
	}
	if activity.ID != 0 {
		id := activity.ID
		candidate.ActivityID = &id
	}

	if conflicts := scheduling.FindConflicts(candidate, existing); len(conflicts) > 0 {
		return &ScheduleConflictError{Conflicts: conflicts}
	}

	if err := save(tx); err != nil {
		return mapRepositoryError(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activity: %w", err)
	}
	return nil
}

func (s *activityService) broadcast(event string, activity *models.Activity) {
	if s.broadcaster == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":    event,
		"activity": activity,
	})
	if err != nil {
		s.logger.Error("failed to marshal schedule event", slog.Any("error", err))
		return
	}
	for _, team := range activity.Teams {
		s.broadcaster.BroadcastToRoom(fmt.Sprintf("team_%d", team.ID), payload)
	}
}

// timeOfDayBefore сравнивает только часы и минуты, базовая дата не важна.
func timeOfDayBefore(a, b time.Time) bool {
	return a.Hour()*60+a.Minute() < b.Hour()*60+b.Minute()
}

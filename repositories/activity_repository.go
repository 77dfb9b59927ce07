package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sur-voley/club-system/models"
)

var (
	ErrActivityNotFound     = errors.New("activity not found")
	ErrActivityInvalidTeam  = errors.New("invalid team reference")
	ErrActivityInvalidCoach = errors.New("invalid coach reference")
	ErrActivityDateRange    = errors.New("activity end date precedes start date")
)

type ListActivitiesFilter struct {
	From            *time.Time
	To              *time.Time
	TeamID          *int
	Kind            *models.ActivityKind
	IncludeCanceled bool
	Limit           int
	Offset          int
}

type ActivityRepository interface {
	Create(ctx context.Context, exec SQLExecutor, activity *models.Activity, teamIDs []int) error
	GetByID(ctx context.Context, id int) (*models.Activity, error)
	List(ctx context.Context, filter ListActivitiesFilter) ([]models.Activity, error)
	// ListOnDate returns every non-deleted activity starting on the given
	// date, participating teams populated. Runs on the provided executor so
	// the conflict scan can share the writing transaction.
	ListOnDate(ctx context.Context, exec SQLExecutor, date time.Time) ([]models.Activity, error)
	ListUpcomingByTeam(ctx context.Context, teamID int, from time.Time) ([]models.Activity, error)
	Update(ctx context.Context, exec SQLExecutor, activity *models.Activity, teamIDs []int) error
	SetCanceled(ctx context.Context, id int, reason string) error
	Delete(ctx context.Context, id int) error
}

type postgresActivityRepository struct {
	db *sql.DB
}

func NewPostgresActivityRepository(db *sql.DB) ActivityRepository {
	return &postgresActivityRepository{db: db}
}

func (r *postgresActivityRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const activityColumns = `id, title, kind, start_date, end_date, start_time, end_time, description, coach_id, canceled, cancel_reason, created_at`

func (r *postgresActivityRepository) Create(ctx context.Context, exec SQLExecutor, a *models.Activity, teamIDs []int) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO activities (title, kind, start_date, end_date, start_time, end_time, description, coach_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		a.Title, a.Kind, a.StartDate, a.EndDate, a.StartTime, a.EndTime, a.Description, a.CoachID,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return mapActivityError(err)
	}

	return r.replaceTeams(ctx, executor, a.ID, teamIDs)
}

func (r *postgresActivityRepository) GetByID(ctx context.Context, id int) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	a, err := scanActivityRow(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}

	if err := r.attachTeams(ctx, r.db, []*models.Activity{a}); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *postgresActivityRepository) List(ctx context.Context, filter ListActivitiesFilter) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.From != nil {
		query += fmt.Sprintf(" AND start_date >= $%d", argID)
		args = append(args, *filter.From)
		argID++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND start_date <= $%d", argID)
		args = append(args, *filter.To)
		argID++
	}
	if filter.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argID)
		args = append(args, *filter.Kind)
		argID++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND id IN (SELECT activity_id FROM activity_teams WHERE team_id = $%d)", argID)
		args = append(args, *filter.TeamID)
		argID++
	}
	if !filter.IncludeCanceled {
		query += " AND canceled = FALSE"
	}

	query += " ORDER BY start_date DESC, title"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryActivities(ctx, r.db, query, args...)
}

func (r *postgresActivityRepository) ListOnDate(ctx context.Context, exec SQLExecutor, date time.Time) ([]models.Activity, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + activityColumns + ` FROM activities WHERE start_date = $1`
	return r.queryActivities(ctx, executor, query, date)
}

func (r *postgresActivityRepository) ListUpcomingByTeam(ctx context.Context, teamID int, from time.Time) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
		WHERE canceled = FALSE
		  AND start_date >= $1
		  AND id IN (SELECT activity_id FROM activity_teams WHERE team_id = $2)
		ORDER BY start_date, title`
	return r.queryActivities(ctx, r.db, query, from, teamID)
}

func (r *postgresActivityRepository) Update(ctx context.Context, exec SQLExecutor, a *models.Activity, teamIDs []int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE activities
		SET title = $1, kind = $2, start_date = $3, end_date = $4,
		    start_time = $5, end_time = $6, description = $7, coach_id = $8
		WHERE id = $9`

	result, err := executor.ExecContext(ctx, query,
		a.Title, a.Kind, a.StartDate, a.EndDate, a.StartTime, a.EndTime, a.Description, a.CoachID, a.ID,
	)
	if err != nil {
		return mapActivityError(err)
	}
	if err := checkAffectedRows(result, ErrActivityNotFound); err != nil {
		return err
	}

	return r.replaceTeams(ctx, executor, a.ID, teamIDs)
}

func (r *postgresActivityRepository) SetCanceled(ctx context.Context, id int, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activities SET canceled = TRUE, cancel_reason = $1 WHERE id = $2`, reason, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrActivityNotFound)
}

func (r *postgresActivityRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrActivityNotFound)
}

func (r *postgresActivityRepository) replaceTeams(ctx context.Context, exec SQLExecutor, activityID int, teamIDs []int) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM activity_teams WHERE activity_id = $1`, activityID); err != nil {
		return fmt.Errorf("failed to clear activity teams: %w", err)
	}
	for _, teamID := range teamIDs {
		_, err := exec.ExecContext(ctx,
			`INSERT INTO activity_teams (activity_id, team_id) VALUES ($1, $2)`, activityID, teamID)
		if err != nil {
			return mapActivityError(err)
		}
	}
	return nil
}

func (r *postgresActivityRepository) queryActivities(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Activity, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Activity
	for rows.Next() {
		a, err := scanActivityRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		ptrs = append(ptrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachTeams(ctx, exec, ptrs); err != nil {
		return nil, err
	}

	activities := make([]models.Activity, len(ptrs))
	for i, a := range ptrs {
		activities[i] = *a
	}
	return activities, nil
}

// attachTeams populates Teams (with coach IDs) for a batch of activities in
// one query. Coach IDs on the teams are what the coach-overlap rule reads.
func (r *postgresActivityRepository) attachTeams(ctx context.Context, exec SQLExecutor, activities []*models.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	ids := make([]int64, len(activities))
	byID := make(map[int]*models.Activity, len(activities))
	for i, a := range activities {
		ids[i] = int64(a.ID)
		byID[a.ID] = a
	}

	query := `
		SELECT at.activity_id, t.id, t.name, t.category_id, t.coach_id
		FROM activity_teams at
		JOIN teams t ON at.team_id = t.id
		WHERE at.activity_id = ANY($1)
		ORDER BY at.activity_id, t.id`

	rows, err := exec.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load activity teams: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var activityID int
		var t models.Team
		if err := rows.Scan(&activityID, &t.ID, &t.Name, &t.CategoryID, &t.CoachID); err != nil {
			return err
		}
		if a, ok := byID[activityID]; ok {
			a.Teams = append(a.Teams, t)
		}
	}
	return rows.Err()
}

func scanActivityRow(scan func(dest ...interface{}) error) (*models.Activity, error) {
	var a models.Activity
	var startTime, endTime sql.NullTime
	var description, cancelReason sql.NullString
	var coachID sql.NullInt64

	err := scan(
		&a.ID, &a.Title, &a.Kind, &a.StartDate, &a.EndDate,
		&startTime, &endTime, &description, &coachID, &a.Canceled, &cancelReason, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startTime.Valid {
		st := startTime.Time
		a.StartTime = &st
	}
	if endTime.Valid {
		et := endTime.Time
		a.EndTime = &et
	}
	a.Description = nullableString(description)
	a.CancelReason = nullableString(cancelReason)
	a.CoachID = nullableInt(coachID)
	return &a, nil
}

func mapActivityError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			switch pqErr.Constraint {
			case "activities_coach_id_fkey":
				return ErrActivityInvalidCoach
			case "activity_teams_team_id_fkey":
				return ErrActivityInvalidTeam
			}
		case "23514":
			if pqErr.Constraint == "ck_activities_date_range" {
				return ErrActivityDateRange
			}
		}
	}
	return err
}

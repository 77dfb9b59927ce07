package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sur-voley/club-system/models"
)

var (
	ErrAttendanceNotFound        = errors.New("attendance record not found")
	ErrAttendanceDuplicate       = errors.New("attendance already recorded for this player and activity")
	ErrAttendanceInvalidPlayer   = errors.New("invalid player reference")
	ErrAttendanceInvalidActivity = errors.New("invalid activity reference")
)

type AttendanceRepository interface {
	Create(ctx context.Context, attendance *models.Attendance) error
	GetByID(ctx context.Context, id int) (*models.Attendance, error)
	ListByActivity(ctx context.Context, activityID int) ([]models.Attendance, error)
	ListByPlayer(ctx context.Context, playerID int) ([]models.Attendance, error)
	UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error
	Delete(ctx context.Context, id int) error
}

type postgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &postgresAttendanceRepository{db: db}
}

func (r *postgresAttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	query := `
		INSERT INTO attendances (player_id, activity_id, coach_id, status, marked_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		a.PlayerID, a.ActivityID, a.CoachID, a.Status, a.MarkedAt,
	).Scan(&a.ID, &a.CreatedAt)
	return mapAttendanceError(err)
}

func (r *postgresAttendanceRepository) GetByID(ctx context.Context, id int) (*models.Attendance, error) {
	query := `
		SELECT id, player_id, activity_id, coach_id, status, marked_at, created_at
		FROM attendances WHERE id = $1`

	var a models.Attendance
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.PlayerID, &a.ActivityID, &a.CoachID, &a.Status, &a.MarkedAt, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListByActivity возвращает отметки активности вместе с именами игроков —
// этого достаточно для листа посещаемости тренера.
func (r *postgresAttendanceRepository) ListByActivity(ctx context.Context, activityID int) ([]models.Attendance, error) {
	query := `
		SELECT
			a.id, a.player_id, a.activity_id, a.coach_id, a.status, a.marked_at, a.created_at,
			pr.id, pr.first_name, pr.last_name, pr.second_last_name
		FROM attendances a
		JOIN players pl ON a.player_id = pl.id
		JOIN profiles pr ON pl.profile_id = pr.id
		WHERE a.activity_id = $1
		ORDER BY a.marked_at DESC`

	rows, err := r.db.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	attendances := []models.Attendance{}
	for rows.Next() {
		var a models.Attendance
		var pr models.Profile
		err := rows.Scan(
			&a.ID, &a.PlayerID, &a.ActivityID, &a.CoachID, &a.Status, &a.MarkedAt, &a.CreatedAt,
			&pr.ID, &pr.FirstName, &pr.LastName, &pr.SecondLastName,
		)
		if err != nil {
			return nil, err
		}
		a.Player = &models.Player{ID: a.PlayerID, ProfileID: pr.ID, Profile: &pr}
		attendances = append(attendances, a)
	}
	return attendances, rows.Err()
}

func (r *postgresAttendanceRepository) ListByPlayer(ctx context.Context, playerID int) ([]models.Attendance, error) {
	query := `
		SELECT id, player_id, activity_id, coach_id, status, marked_at, created_at
		FROM attendances
		WHERE player_id = $1
		ORDER BY marked_at DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	attendances := []models.Attendance{}
	for rows.Next() {
		var a models.Attendance
		err := rows.Scan(&a.ID, &a.PlayerID, &a.ActivityID, &a.CoachID, &a.Status, &a.MarkedAt, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		attendances = append(attendances, a)
	}
	return attendances, rows.Err()
}

func (r *postgresAttendanceRepository) UpdateStatus(ctx context.Context, id int, status models.AttendanceStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE attendances SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

func (r *postgresAttendanceRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrAttendanceNotFound)
}

func mapAttendanceError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			// uq_attendances_player_activity — страховка от гонки двух
			// одновременных отметок, см. services.AttendanceService.
			return ErrAttendanceDuplicate
		case "23503":
			switch pqErr.Constraint {
			case "attendances_player_id_fkey":
				return ErrAttendanceInvalidPlayer
			case "attendances_activity_id_fkey":
				return ErrAttendanceInvalidActivity
			}
		}
	}
	return err
}

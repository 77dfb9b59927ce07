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
	ErrTeamNotFound        = errors.New("team not found")
	ErrTeamNameConflict    = errors.New("team name conflict within the category")
	ErrTeamInvalidCategory = errors.New("invalid category reference")
	ErrTeamInvalidCoach    = errors.New("invalid coach reference")
	ErrTeamInUse           = errors.New("team is in use (players/activities exist)")
)

type ListTeamsFilter struct {
	CategoryID *int
	CoachID    *int
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int) error
	UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	query := `
		INSERT INTO teams (name, category_id, coach_id, crest_key)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, t.Name, t.CategoryID, t.CoachID, t.CrestKey).
		Scan(&t.ID, &t.CreatedAt)
	return mapTeamError(err)
}

// GetByID загружает команду вместе с категорией и тренером — обе нужны
// валидаторам (slug категории и активность тренера).
func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT
			t.id, t.name, t.category_id, t.coach_id, t.created_at, t.crest_key,
			c.id, c.slug, c.description, c.created_at,
			p.id, p.role, p.run, p.email, p.first_name, p.last_name, p.second_last_name, p.active, p.created_at
		FROM teams t
		JOIN categories c ON t.category_id = c.id
		JOIN profiles p ON t.coach_id = p.id
		WHERE t.id = $1`

	t, err := scanTeamRow(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error) {
	query := `
		SELECT
			t.id, t.name, t.category_id, t.coach_id, t.created_at, t.crest_key,
			c.id, c.slug, c.description, c.created_at,
			p.id, p.role, p.run, p.email, p.first_name, p.last_name, p.second_last_name, p.active, p.created_at
		FROM teams t
		JOIN categories c ON t.category_id = c.id
		JOIN profiles p ON t.coach_id = p.id
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND t.category_id = $%d", argID)
		args = append(args, *filter.CategoryID)
		argID++
	}
	if filter.CoachID != nil {
		query += fmt.Sprintf(" AND t.coach_id = $%d", argID)
		args = append(args, *filter.CoachID)
	}

	query += " ORDER BY c.slug, t.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := []models.Team{}
	for rows.Next() {
		t, err := scanTeamRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	query := `UPDATE teams SET name = $1, category_id = $2, coach_id = $3 WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, t.Name, t.CategoryID, t.CoachID, t.ID)
	if err != nil {
		return mapTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return mapTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateCrestKey(ctx context.Context, teamID int, crestKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET crest_key = $1 WHERE id = $2`, crestKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func scanTeamRow(scan func(dest ...interface{}) error) (*models.Team, error) {
	var t models.Team
	var c models.Category
	var p models.Profile
	var crestKey, categoryDescription sql.NullString

	err := scan(
		&t.ID, &t.Name, &t.CategoryID, &t.CoachID, &t.CreatedAt, &crestKey,
		&c.ID, &c.Slug, &categoryDescription, &c.CreatedAt,
		&p.ID, &p.Role, &p.RUN, &p.Email, &p.FirstName, &p.LastName, &p.SecondLastName, &p.Active, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CrestKey = nullableString(crestKey)
	c.Description = nullableString(categoryDescription)
	t.Category = &c
	t.Coach = &p
	return &t, nil
}

func mapTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "uq_teams_name_category" {
				return ErrTeamNameConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "teams_category_id_fkey":
				return ErrTeamInvalidCategory
			case "teams_coach_id_fkey":
				return ErrTeamInvalidCoach
			default:
				return ErrTeamInUse
			}
		}
	}
	return err
}

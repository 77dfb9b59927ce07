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
	ErrPlayerNotFound        = errors.New("player not found")
	ErrPlayerProfileConflict = errors.New("profile already has a player record")
	ErrPlayerInvalidProfile  = errors.New("invalid profile reference")
	ErrPlayerInvalidTeam     = errors.New("invalid team reference")
)

type ListPlayersFilter struct {
	Search string
	TeamID *int
	Active *bool
	Limit  int
	Offset int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByProfileID(ctx context.Context, profileID int) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error)
	ListByTeamID(ctx context.Context, teamID int) ([]models.Player, error)
	Update(ctx context.Context, player *models.Player) error
	SetActive(ctx context.Context, id int, active bool) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

// Игроки всегда читаются вместе с профилем; команда и её категория
// подтягиваются LEFT JOIN, потому что команда опциональна.
const playerSelect = `
	SELECT
		pl.id, pl.profile_id, pl.team_id, pl.birth_date, pl.blood_type, pl.active, pl.created_at,
		pr.id, pr.role, pr.run, pr.email, pr.first_name, pr.last_name, pr.second_last_name, pr.active, pr.created_at,
		t.id, t.name, t.category_id, t.coach_id,
		c.id, c.slug
	FROM players pl
	JOIN profiles pr ON pl.profile_id = pr.id
	LEFT JOIN teams t ON pl.team_id = t.id
	LEFT JOIN categories c ON t.category_id = c.id`

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (profile_id, team_id, birth_date, blood_type, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ProfileID, p.TeamID, p.BirthDate, p.BloodType, p.Active,
	).Scan(&p.ID, &p.CreatedAt)
	return mapPlayerError(err)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, playerSelect+` WHERE pl.id = $1`, id)
	p, err := scanPlayerRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) GetByProfileID(ctx context.Context, profileID int) (*models.Player, error) {
	row := r.db.QueryRowContext(ctx, playerSelect+` WHERE pl.profile_id = $1`, profileID)
	p, err := scanPlayerRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, error) {
	query := playerSelect + ` WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Search != "" {
		query += fmt.Sprintf(` AND (pr.first_name ILIKE $%d OR pr.last_name ILIKE $%d OR pr.second_last_name ILIKE $%d
			OR pr.run ILIKE $%d OR t.name ILIKE $%d OR c.slug ILIKE $%d)`,
			argID, argID, argID, argID, argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if filter.TeamID != nil {
		query += fmt.Sprintf(" AND pl.team_id = $%d", argID)
		args = append(args, *filter.TeamID)
		argID++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(" AND pl.active = $%d", argID)
		args = append(args, *filter.Active)
		argID++
	}

	query += " ORDER BY c.slug NULLS LAST, t.name NULLS LAST, pr.last_name, pr.second_last_name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) ListByTeamID(ctx context.Context, teamID int) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, playerSelect+` WHERE pl.team_id = $1 ORDER BY pr.last_name, pr.second_last_name`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players by team: %w", err)
	}
	defer rows.Close()

	return scanPlayers(rows)
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players
		SET team_id = $1, birth_date = $2, blood_type = $3, active = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, p.TeamID, p.BirthDate, p.BloodType, p.Active, p.ID)
	if err != nil {
		return mapPlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func scanPlayers(rows *sql.Rows) ([]models.Player, error) {
	players := []models.Player{}
	for rows.Next() {
		p, err := scanPlayerRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func scanPlayerRow(scan func(dest ...interface{}) error) (*models.Player, error) {
	var p models.Player
	var pr models.Profile
	var teamID sql.NullInt64
	var birthDate sql.NullTime
	var bloodType sql.NullString

	var tID, tCategoryID, tCoachID, cID sql.NullInt64
	var tName, cSlug sql.NullString

	err := scan(
		&p.ID, &p.ProfileID, &teamID, &birthDate, &bloodType, &p.Active, &p.CreatedAt,
		&pr.ID, &pr.Role, &pr.RUN, &pr.Email, &pr.FirstName, &pr.LastName, &pr.SecondLastName, &pr.Active, &pr.CreatedAt,
		&tID, &tName, &tCategoryID, &tCoachID,
		&cID, &cSlug,
	)
	if err != nil {
		return nil, err
	}

	p.TeamID = nullableInt(teamID)
	if birthDate.Valid {
		bd := birthDate.Time
		p.BirthDate = &bd
	}
	if bloodType.Valid {
		bt := models.BloodType(bloodType.String)
		p.BloodType = &bt
	}
	p.Profile = &pr

	if tID.Valid {
		team := models.Team{
			ID:         int(tID.Int64),
			Name:       tName.String,
			CategoryID: int(tCategoryID.Int64),
			CoachID:    int(tCoachID.Int64),
		}
		if cID.Valid {
			team.Category = &models.Category{ID: int(cID.Int64), Slug: cSlug.String}
		}
		p.Team = &team
	}
	return &p, nil
}

func mapPlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "players_profile_id_key" {
				return ErrPlayerProfileConflict
			}
		case "23503":
			switch pqErr.Constraint {
			case "players_profile_id_fkey":
				return ErrPlayerInvalidProfile
			case "players_team_id_fkey":
				return ErrPlayerInvalidTeam
			}
		}
	}
	return err
}

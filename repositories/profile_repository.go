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
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileRUNConflict   = errors.New("profile run conflict")
	ErrProfileEmailConflict = errors.New("profile email conflict")
)

type ListProfilesFilter struct {
	Search string
	Role   *models.ProfileRole
	Active *bool
	Limit  int
	Offset int
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByRUN(ctx context.Context, run string) (*models.Profile, error)
	List(ctx context.Context, filter ListProfilesFilter) ([]models.Profile, error)
	ListCoaches(ctx context.Context, onlyActive bool) ([]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	SetActive(ctx context.Context, id int, active bool) error
	UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

const profileColumns = `id, role, run, email, phone, first_name, middle_name, last_name, second_last_name, password_hash, active, created_at, photo_key`

func (r *postgresProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (role, run, email, phone, first_name, middle_name, last_name, second_last_name, password_hash, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Role, p.RUN, p.Email, p.Phone,
		p.FirstName, p.MiddleName, p.LastName, p.SecondLastName,
		p.PasswordHash, p.Active,
	).Scan(&p.ID, &p.CreatedAt)

	return mapProfileError(err)
}

func (r *postgresProfileRepository) GetByID(ctx context.Context, id int) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresProfileRepository) GetByRUN(ctx context.Context, run string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE run = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, run))
}

func (r *postgresProfileRepository) List(ctx context.Context, filter ListProfilesFilter) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Search != "" {
		query += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR second_last_name ILIKE $%d OR run ILIKE $%d OR email ILIKE $%d)`,
			argID, argID, argID, argID, argID)
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if filter.Role != nil {
		query += fmt.Sprintf(" AND role = $%d", argID)
		args = append(args, *filter.Role)
		argID++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(" AND active = $%d", argID)
		args = append(args, *filter.Active)
		argID++
	}

	query += " ORDER BY last_name, second_last_name, first_name, id"

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
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (r *postgresProfileRepository) ListCoaches(ctx context.Context, onlyActive bool) ([]models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE role = $1`
	args := []interface{}{models.RoleCoach}
	if onlyActive {
		query += " AND active = TRUE"
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list coaches: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

func (r *postgresProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET role = $1, run = $2, email = $3, phone = $4,
		    first_name = $5, middle_name = $6, last_name = $7, second_last_name = $8,
		    password_hash = $9, active = $10
		WHERE id = $11`

	result, err := r.db.ExecContext(ctx, query,
		p.Role, p.RUN, p.Email, p.Phone,
		p.FirstName, p.MiddleName, p.LastName, p.SecondLastName,
		p.PasswordHash, p.Active, p.ID,
	)
	if err != nil {
		return mapProfileError(err)
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) SetActive(ctx context.Context, id int, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) UpdatePhotoKey(ctx context.Context, id int, photoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE profiles SET photo_key = $1 WHERE id = $2`, photoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrProfileNotFound)
}

func (r *postgresProfileRepository) scanOne(row *sql.Row) (*models.Profile, error) {
	p, err := scanProfileRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProfiles(rows *sql.Rows) ([]models.Profile, error) {
	profiles := []models.Profile{}
	for rows.Next() {
		p, err := scanProfileRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func scanProfileRow(scan func(dest ...interface{}) error) (*models.Profile, error) {
	var p models.Profile
	var phone, middleName, photoKey sql.NullString

	err := scan(
		&p.ID, &p.Role, &p.RUN, &p.Email, &phone,
		&p.FirstName, &middleName, &p.LastName, &p.SecondLastName,
		&p.PasswordHash, &p.Active, &p.CreatedAt, &photoKey,
	)
	if err != nil {
		return nil, err
	}
	p.Phone = nullableString(phone)
	p.MiddleName = nullableString(middleName)
	p.PhotoKey = nullableString(photoKey)
	return &p, nil
}

func mapProfileError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "profiles_run_key":
			return ErrProfileRUNConflict
		case "profiles_email_key":
			return ErrProfileEmailConflict
		}
	}
	return err
}

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
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategorySlugConflict = errors.New("category slug conflict")
	ErrCategoryInUse        = errors.New("category is in use by teams")
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id int) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) Create(ctx context.Context, c *models.Category) error {
	query := `INSERT INTO categories (slug, description) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, c.Slug, c.Description).Scan(&c.ID, &c.CreatedAt)
	return mapCategoryError(err)
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, id int) (*models.Category, error) {
	query := `SELECT id, slug, description, created_at FROM categories WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresCategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	query := `SELECT id, slug, description, created_at FROM categories WHERE slug = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, slug))
}

func (r *postgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, slug, description, created_at FROM categories ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var c models.Category
		var description sql.NullString
		if err := rows.Scan(&c.ID, &c.Slug, &description, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Description = nullableString(description)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresCategoryRepository) Update(ctx context.Context, c *models.Category) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE categories SET slug = $1, description = $2 WHERE id = $3`,
		c.Slug, c.Description, c.ID,
	)
	if err != nil {
		return mapCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapCategoryError(err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) scanOne(row *sql.Row) (*models.Category, error) {
	var c models.Category
	var description sql.NullString
	err := row.Scan(&c.ID, &c.Slug, &description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	c.Description = nullableString(description)
	return &c, nil
}

func mapCategoryError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			return ErrCategorySlugConflict
		case "23503":
			return ErrCategoryInUse
		}
	}
	return err
}

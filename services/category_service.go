package services

import (
	"context"
	"strings"

	"github.com/sur-voley/club-system/models"
	"github.com/sur-voley/club-system/repositories"
)

type CategoryInput struct {
	Slug        string  `json:"slug"`
	Description *string `json:"description,omitempty"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	GetCategoryByID(ctx context.Context, id int) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateCategory(ctx context.Context, id int, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	slug := normalizeSlug(input.Slug)
	if slug == "" {
		return nil, NewValidationError("slug", "slug is required")
	}

	category := &models.Category{
		Slug:        slug,
		Description: input.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, mapRepositoryError(err)
	}
	return category, nil
}

func (s *categoryService) GetCategoryByID(ctx context.Context, id int) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id int, input CategoryInput) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	if input.Slug != "" {
		category.Slug = normalizeSlug(input.Slug)
	}
	if input.Description != nil {
		category.Description = input.Description
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, mapRepositoryError(err)
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id int) error {
	return mapRepositoryError(s.categoryRepo.Delete(ctx, id))
}

// normalizeSlug приводит слаг к нижнему регистру без пробелов по краям,
// внутренние пробелы заменяются дефисами ("Sub 14" -> "sub-14").
func normalizeSlug(slug string) string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return strings.ReplaceAll(slug, " ", "-")
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
	"github.com/kisahtegar/alqowy/internal/storage/s3"
	"github.com/kisahtegar/alqowy/internal/utils"
	"github.com/kisahtegar/alqowy/internal/validator"
)

type categoryService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	files     s3.FileStore
}

func NewCategoryService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, files s3.FileStore) CategoryService {
	return &categoryService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		files:     files,
	}
}

func (s *categoryService) Create(ctx context.Context, req *CreateCategoryRequest, icon *FileUpload) (*CategoryResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	slug := utils.Slugify(req.Name)
	taken, err := s.repo.Category().ExistsBySlug(ctx, nil, slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, ErrSlugTaken
	}

	category := &models.Category{
		Name: req.Name,
		Slug: slug,
	}

	if icon != nil {
		iconURL, err := s.uploadIcon(ctx, icon)
		if err != nil {
			return nil, err
		}
		category.Icon = &iconURL
	}

	if err := s.repo.Category().Create(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("category created", "category_id", category.ID, "slug", category.Slug)
	return s.toCategoryResponse(category), nil
}

func (s *categoryService) GetByID(ctx context.Context, categoryID uint) (*CategoryResponse, error) {
	category, err := s.repo.Category().GetByID(ctx, nil, categoryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return s.toCategoryResponse(category), nil
}

func (s *categoryService) Update(ctx context.Context, categoryID uint, req *UpdateCategoryRequest, icon *FileUpload) (*CategoryResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, err.Error())
	}

	category, err := s.repo.Category().GetByID(ctx, nil, categoryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil && *req.Name != category.Name {
		slug := utils.Slugify(*req.Name)
		taken, err := s.repo.Category().ExistsBySlug(ctx, nil, slug, &category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check slug: %w", err)
		}
		if taken {
			return nil, ErrSlugTaken
		}
		category.Name = *req.Name
		category.Slug = slug
	}

	if icon != nil {
		iconURL, err := s.uploadIcon(ctx, icon)
		if err != nil {
			return nil, err
		}
		category.Icon = &iconURL
	}

	if err := s.repo.Category().Update(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("category updated", "category_id", category.ID, "slug", category.Slug)
	return s.toCategoryResponse(category), nil
}

// Delete refuses to remove a category that still has courses; courses
// must be moved or deleted first.
func (s *categoryService) Delete(ctx context.Context, categoryID uint) error {
	category, err := s.repo.Category().GetByID(ctx, nil, categoryID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	courses, err := s.repo.Course().ListByCategory(ctx, nil, category.ID)
	if err != nil {
		return fmt.Errorf("failed to check category courses: %w", err)
	}
	if len(courses) > 0 {
		return ErrCategoryInUse
	}

	if err := s.repo.Category().Delete(ctx, nil, category.ID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("category deleted", "category_id", category.ID)
	return nil
}

func (s *categoryService) List(ctx context.Context) (*CategoryListResponse, error) {
	categories, err := s.repo.Category().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	resp := &CategoryListResponse{
		Categories: make([]*CategoryResponse, 0, len(categories)),
		Total:      int64(len(categories)),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, s.toCategoryResponse(c))
	}
	return resp, nil
}

func (s *categoryService) uploadIcon(ctx context.Context, icon *FileUpload) (string, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUpload(icon.Size, icon.ContentType, validator.MaxImageSizeBytes); len(errs) > 0 {
		return "", fmt.Errorf("%w: %s", ErrValidationFailed, errs.Error())
	}
	url, err := s.files.Upload(ctx, s3.PrefixIcons, icon.Filename, icon.ContentType, icon.Data)
	if err != nil {
		s.logger.Error("icon upload failed", "error", err)
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, err.Error())
	}
	return url, nil
}

func (s *categoryService) toCategoryResponse(category *models.Category) *CategoryResponse {
	return &CategoryResponse{
		Category:    category,
		CourseCount: len(category.Courses),
	}
}

package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kisahtegar/alqowy/internal/cache"
	"github.com/kisahtegar/alqowy/internal/models"
	"github.com/kisahtegar/alqowy/internal/repositories"
)

type CategoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CategoryRepository {
	return &CategoryPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	if err := getDB(c.db, tx).WithContext(ctx).Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager, category.ID)
	return nil
}

func (c *CategoryPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	err := getDB(c.db, tx).WithContext(ctx).First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error) {
	var category models.Category
	err := getDB(c.db, tx).WithContext(ctx).First(&category, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, tx *gorm.DB, category *models.Category) error {
	if err := getDB(c.db, tx).WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager, category.ID)
	return nil
}

func (c *CategoryPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := getDB(c.db, tx).WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager, id)
	return nil
}

// List returns all categories, cached: the set is small and read on every
// catalog page.
func (c *CategoryPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Category, error) {
	var categories []*models.Category

	err := c.cacheManager.Category.CacheOrExecute(ctx, "list:all", &categories, cache.CategoryCacheConfig.TTL, func() (interface{}, error) {
		var dbCategories []*models.Category
		if err := getDB(c.db, tx).WithContext(ctx).Order("name asc").Find(&dbCategories).Error; err != nil {
			return nil, fmt.Errorf("failed to list categories: %w", err)
		}
		return dbCategories, nil
	})
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (c *CategoryPostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	query := getDB(c.db, tx).WithContext(ctx).
		Model(&models.Category{}).
		Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

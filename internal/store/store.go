// Package store persists recipes with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipe-extraction-api/internal/recipe"
)

// ErrNotFound is returned for missing recipes and for recipes owned by
// another user.
var ErrNotFound = errors.New("recipe not found")

// Open connects to sqlite or postgres and migrates the schema.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dsn == "" {
			dsn = ":memory:"
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&RecipeModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// RecipeRepository stores canonical recipes.
type RecipeRepository struct {
	db     *gorm.DB
	mapper *recipe.Mapper
}

// NewRecipeRepository creates a repository. Rows read back are coerced by
// mapper.
func NewRecipeRepository(db *gorm.DB, mapper *recipe.Mapper) *RecipeRepository {
	return &RecipeRepository{db: db, mapper: mapper}
}

// Create inserts r.
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	if err := r.db.WithContext(ctx).Create(toModel(rec)).Error; err != nil {
		return fmt.Errorf("insert recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads a recipe owned by userID. Another user's recipe reads as
// ErrNotFound.
func (r *RecipeRepository) Get(ctx context.Context, id, userID string) (*recipe.Recipe, error) {
	q := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)

	var model RecipeModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load recipe %s: %w", id, err)
	}
	rec := r.mapper.FromRow(model.toRow())
	return &rec, nil
}

// ListByUser returns a user's recipes, newest first.
func (r *RecipeRepository) ListByUser(ctx context.Context, userID string, favoritesOnly bool) ([]recipe.Recipe, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if favoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}

	var models []RecipeModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list recipes for %s: %w", userID, err)
	}

	out := make([]recipe.Recipe, 0, len(models))
	for i := range models {
		out = append(out, r.mapper.FromRow(models[i].toRow()))
	}
	return out, nil
}

// SetFavorite flips the favorite flag on a user's recipe.
func (r *RecipeRepository) SetFavorite(ctx context.Context, id, userID string, favorite bool) error {
	res := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_favorite": favorite, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("update recipe %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a user's recipe.
func (r *RecipeRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&RecipeModel{})
	if res.Error != nil {
		return fmt.Errorf("delete recipe %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

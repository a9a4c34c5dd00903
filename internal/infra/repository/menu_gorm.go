package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/langhaus/website-backend/internal/domain/menu"
	"github.com/langhaus/website-backend/internal/models"
)

type MenuGormRepository struct {
	db *gorm.DB
}

func NewMenuGormRepository(db *gorm.DB) *MenuGormRepository {
	return &MenuGormRepository{db: db}
}

var _ domain.Repository = (*MenuGormRepository)(nil)

func (r *MenuGormRepository) ListCardIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.MenuCard{}).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *MenuGormRepository) GetCard(ctx context.Context, id uint) (*models.MenuCard, error) {
	var card models.MenuCard
	if err := r.db.WithContext(ctx).First(&card, id).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *MenuGormRepository) ListCategoriesWithItems(
	ctx context.Context,
	cardID uint,
) ([]models.MenuCategory, error) {

	now := time.Now()

	var categories []models.MenuCategory
	err := r.db.WithContext(ctx).
		Where("menu_card_id = ?", cardID).
		Order("id ASC").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.
				Where("(active_from IS NULL OR active_from <= ?) AND (active_to IS NULL OR active_to >= ?)", now, now).
				Order("number ASC")
		}).
		Find(&categories).Error
	return categories, err
}

func (r *MenuGormRepository) LastContentChange(
	ctx context.Context,
	cardID uint,
) (time.Time, error) {

	var card models.MenuCard
	if err := r.db.WithContext(ctx).First(&card, cardID).Error; err != nil {
		return time.Time{}, err
	}

	var catMax, itemMax time.Time

	err := r.db.WithContext(ctx).
		Model(&models.MenuCategory{}).
		Where("menu_card_id = ?", cardID).
		Select("COALESCE(MAX(updated_at), to_timestamp(0))").
		Scan(&catMax).Error
	if err != nil {
		return time.Time{}, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Joins("JOIN menu_categories ON menu_categories.id = menu_items.category_id").
		Where("menu_categories.menu_card_id = ?", cardID).
		Select("COALESCE(MAX(menu_items.updated_at), to_timestamp(0))").
		Scan(&itemMax).Error
	if err != nil {
		return time.Time{}, err
	}

	last := card.UpdatedAt
	if last.Before(domain.EpochFloor) {
		last = domain.EpochFloor
	}
	if catMax.After(last) {
		last = catMax
	}
	if itemMax.After(last) {
		last = itemMax
	}
	return last, nil
}

func (r *MenuGormRepository) SetGeneratedPdf(
	ctx context.Context,
	cardID uint,
	relPath string,
	generatedAt time.Time,
) error {

	// UpdateColumns on purpose: touching updated_at here would mark the card
	// dirty again right after every generation.
	return r.db.WithContext(ctx).
		Model(&models.MenuCard{}).
		Where("id = ?", cardID).
		UpdateColumns(map[string]interface{}{
			"pdf_path":          relPath,
			"last_generated_at": generatedAt,
		}).Error
}

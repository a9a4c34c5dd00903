package menu

import (
	"context"
	"time"

	"github.com/langhaus/website-backend/internal/models"
)

type Repository interface {
	// -------- Cards --------
	ListCardIDs(
		ctx context.Context,
	) ([]uint, error)

	GetCard(
		ctx context.Context,
		id uint,
	) (*models.MenuCard, error)

	// ListCategoriesWithItems returns the card's categories in id order, each
	// carrying its currently active items in printed-number order.
	ListCategoriesWithItems(
		ctx context.Context,
		cardID uint,
	) ([]models.MenuCategory, error)

	// -------- Generation bookkeeping --------

	// LastContentChange returns the newest updated_at across the card, its
	// categories and their items. Empty child aggregates fall back to the
	// epoch floor so the comparison stays total.
	LastContentChange(
		ctx context.Context,
		cardID uint,
	) (time.Time, error)

	// SetGeneratedPdf records a successful generation. It must not touch the
	// card's updated_at, otherwise every generation would re-dirty the card.
	SetGeneratedPdf(
		ctx context.Context,
		cardID uint,
		relPath string,
		generatedAt time.Time,
	) error
}

// DocumentBuilder renders a card into a PDF file and returns the relative
// path it was written to.
type DocumentBuilder interface {
	Generate(
		ctx context.Context,
		card *models.MenuCard,
		categories []models.MenuCategory,
	) (string, error)
}

// FileStore removes previously generated artifacts.
type FileStore interface {
	Remove(relPath string) error
}

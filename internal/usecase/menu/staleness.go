package menu

import (
	"context"

	domain "github.com/langhaus/website-backend/internal/domain/menu"
	"github.com/langhaus/website-backend/internal/models"
)

// StalenessTracker decides whether a card's generated PDF is out of date.
// Read-only; the scheduler and the manual trigger both consult it.
type StalenessTracker struct {
	repo domain.Repository
}

func NewStalenessTracker(repo domain.Repository) *StalenessTracker {
	return &StalenessTracker{repo: repo}
}

func (t *StalenessTracker) IsStale(
	ctx context.Context,
	card *models.MenuCard,
) (bool, error) {

	if card.LastGeneratedAt == nil {
		return true, nil
	}

	lastChange, err := t.repo.LastContentChange(ctx, card.ID)
	if err != nil {
		return false, err
	}

	return domain.IsStale(card.LastGeneratedAt, lastChange), nil
}

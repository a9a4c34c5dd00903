package menu

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	domain "github.com/langhaus/website-backend/internal/domain/menu"
	"github.com/langhaus/website-backend/internal/httperr"
	"github.com/langhaus/website-backend/internal/models"
)

// RegenerateCardPDF rebuilds a card's PDF and reconciles the filesystem with
// the database. Safe to run redundantly for a non-stale card; the operation
// is idempotent and simply refreshes last_generated_at.
type RegenerateCardPDF struct {
	repo    domain.Repository
	builder domain.DocumentBuilder
	files   domain.FileStore
	locks   *cardLocks
	log     zerolog.Logger
}

func NewRegenerateCardPDF(
	repo domain.Repository,
	builder domain.DocumentBuilder,
	files domain.FileStore,
	log zerolog.Logger,
) *RegenerateCardPDF {
	return &RegenerateCardPDF{
		repo:    repo,
		builder: builder,
		files:   files,
		locks:   newCardLocks(),
		log:     log,
	}
}

func (uc *RegenerateCardPDF) Execute(
	ctx context.Context,
	cardID uint,
) (*models.MenuCard, error) {

	unlock := uc.locks.lock(cardID)
	defer unlock()

	card, err := uc.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, httperr.ErrBusiness("card_not_found")
	}

	categories, err := uc.repo.ListCategoriesWithItems(ctx, cardID)
	if err != nil {
		return nil, err
	}

	// Taken before rendering: content changed mid-generation stays newer
	// than this stamp and gets picked up again on the next tick.
	generatedAt := time.Now()

	relPath, err := uc.builder.Generate(ctx, card, categories)
	if err != nil {
		// Prior pdf_path / last_generated_at stay untouched, the card
		// remains stale and is retried on the next tick.
		return nil, err
	}

	if card.PdfPath != nil && *card.PdfPath != relPath {
		if err := uc.files.Remove(*card.PdfPath); err != nil {
			uc.log.Warn().Err(err).Uint("card_id", cardID).Str("path", *card.PdfPath).
				Msg("could not remove previous card pdf")
		}
	}

	if err := uc.repo.SetGeneratedPdf(ctx, cardID, relPath, generatedAt); err != nil {
		return nil, err
	}

	card.PdfPath = &relPath
	card.LastGeneratedAt = &generatedAt
	return card, nil
}

package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/storage"
)

// CardBuilder renders a menu card into an A4 PDF below the upload directory,
// one file per card keyed by card id so regeneration overwrites in place.
type CardBuilder struct {
	store *storage.Local
	loc   *time.Location
}

func NewCardBuilder(store *storage.Local, loc *time.Location) *CardBuilder {
	return &CardBuilder{store: store, loc: loc}
}

func RelPath(cardID uint) string {
	return fmt.Sprintf("pdf/menu_card_%d.pdf", cardID)
}

func (b *CardBuilder) Generate(
	ctx context.Context,
	card *models.MenuCard,
	categories []models.MenuCategory,
) (string, error) {

	if err := ctx.Err(); err != nil {
		return "", err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetMargins(20, 20, 20)

	doc.SetFooterFunc(func() {
		doc.SetY(-18)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(153, 153, 153)
		stamp := time.Now().In(b.loc).Format("02.01.2006")
		doc.CellFormat(0, 6, tr(fmt.Sprintf("Restaurant Langhaus • Stand %s", stamp)), "", 0, "C", false, 0, "")
	})

	doc.AddPage()

	// Header
	doc.SetFont("Helvetica", "B", 28)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 14, tr(card.Name), "", 1, "C", false, 0, "")
	doc.Ln(6)

	for _, cat := range categories {
		doc.SetFont("Helvetica", "B", 18)
		doc.SetTextColor(51, 51, 51)
		doc.CellFormat(0, 9, tr(cat.Name), "B", 1, "L", false, 0, "")
		doc.Ln(2)

		for _, item := range cat.Items {
			title := item.Title
			if item.Number > 0 {
				title = fmt.Sprintf("%d. %s", item.Number, item.Title)
			}

			doc.SetFont("Helvetica", "B", 14)
			doc.SetTextColor(0, 0, 0)
			doc.CellFormat(130, 7, tr(title), "", 0, "L", false, 0, "")

			doc.SetFont("Helvetica", "", 14)
			doc.SetTextColor(85, 85, 85)
			doc.CellFormat(0, 7, tr(fmt.Sprintf("%.2f CHF", item.Price)), "", 1, "R", false, 0, "")

			if item.Description != "" {
				doc.SetFont("Helvetica", "I", 12)
				doc.SetTextColor(102, 102, 102)
				doc.MultiCell(0, 6, tr(item.Description), "", "L", false)
			}

			doc.Ln(2)
		}

		doc.Ln(5)
	}

	rel := RelPath(card.ID)
	abs, err := b.store.AbsPath(rel)
	if err != nil {
		return "", err
	}

	if err := doc.OutputFileAndClose(abs); err != nil {
		return "", fmt.Errorf("render card %d: %w", card.ID, err)
	}
	return rel, nil
}

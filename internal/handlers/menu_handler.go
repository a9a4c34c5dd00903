package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/httperr"
	"github.com/langhaus/website-backend/internal/middleware"
	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/storage"
	ucmenu "github.com/langhaus/website-backend/internal/usecase/menu"
)

// MainMenuCardName is the fixed card always listed first in the public menu.
const MainMenuCardName = "Speisekarte"

type MenuHandler struct {
	db     *gorm.DB
	store  *storage.Local
	config *config.Config
	regen  *ucmenu.RegenerateCardPDF
	audit  *audit.Dispatcher
}

func NewMenuHandler(
	db *gorm.DB,
	store *storage.Local,
	cfg *config.Config,
	regen *ucmenu.RegenerateCardPDF,
	auditDisp *audit.Dispatcher,
) *MenuHandler {
	return &MenuHandler{db: db, store: store, config: cfg, regen: regen, audit: auditDisp}
}

// --------- Requests ---------

type CreateCardRequest struct {
	Name              string  `json:"name" binding:"required"`
	StartDate         *string `json:"start_date"`
	EndDate           *string `json:"end_date"`
	IncludeInMainMenu bool    `json:"include_in_main_menu"`
}

type UpdateCardRequest struct {
	Name              *string `json:"name,omitempty"`
	StartDate         *string `json:"start_date,omitempty"`
	EndDate           *string `json:"end_date,omitempty"`
	IncludeInMainMenu *bool   `json:"include_in_main_menu,omitempty"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateItemRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Number      *int     `json:"number"`
	ActiveFrom  *string  `json:"active_from"`
	ActiveTo    *string  `json:"active_to"`
}

type UpdateItemRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Number      *int     `json:"number,omitempty"`
	ActiveFrom  *string  `json:"active_from,omitempty"`
	ActiveTo    *string  `json:"active_to,omitempty"`
}

// --------- Cards ---------

func (h *MenuHandler) CreateCard(c *gin.Context) {
	var req CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_start_date"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_end_date"})
		return
	}

	card := models.MenuCard{
		Name:              req.Name,
		StartDate:         start,
		EndDate:           end,
		IncludeInMainMenu: req.IncludeInMainMenu,
	}

	if err := h.db.Create(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_card"})
		return
	}

	h.dispatch(c, "menu_card_created", "menu_card", &card.ID)

	c.JSON(http.StatusCreated, card)
}

func (h *MenuHandler) ListCards(c *gin.Context) {
	var cards []models.MenuCard
	if err := h.db.Order("start_date ASC NULLS FIRST").Find(&cards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_cards"})
		return
	}

	c.JSON(http.StatusOK, cards)
}

func (h *MenuHandler) UpdateCard(c *gin.Context) {
	var card models.MenuCard
	if err := h.db.First(&card, "id = ?", c.Param("cardId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "card_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_card"})
		return
	}

	var req UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		card.Name = *req.Name
	}
	if req.StartDate != nil {
		start, err := parseDate(req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_start_date"})
			return
		}
		card.StartDate = start
	}
	if req.EndDate != nil {
		end, err := parseDate(req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_end_date"})
			return
		}
		card.EndDate = end
	}
	if req.IncludeInMainMenu != nil {
		card.IncludeInMainMenu = *req.IncludeInMainMenu
	}

	if err := h.db.Save(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_card"})
		return
	}

	h.dispatch(c, "menu_card_updated", "menu_card", &card.ID)

	c.JSON(http.StatusOK, card)
}

func (h *MenuHandler) DeleteCard(c *gin.Context) {
	var card models.MenuCard
	if err := h.db.First(&card, "id = ?", c.Param("cardId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "card_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_card"})
		return
	}

	if card.PdfPath != nil {
		_ = h.store.Remove(*card.PdfPath)
	}

	if err := h.db.Select("Categories").Delete(&card).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_card"})
		return
	}

	h.dispatch(c, "menu_card_deleted", "menu_card", &card.ID)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Categories ---------

func (h *MenuHandler) CreateCategory(c *gin.Context) {
	cardID, err := parseID(c.Param("cardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_card_id"})
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var count int64
	h.db.Model(&models.MenuCard{}).Where("id = ?", cardID).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "card_not_found"})
		return
	}

	category := models.MenuCategory{
		MenuCardID: cardID,
		Name:       req.Name,
	}

	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_category"})
		return
	}

	h.dispatch(c, "menu_category_created", "menu_category", &category.ID)

	c.JSON(http.StatusCreated, category)
}

func (h *MenuHandler) GetCategory(c *gin.Context) {
	var category models.MenuCategory
	err := h.db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("number ASC")
		}).
		First(&category, "id = ?", c.Param("categoryId")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_category"})
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *MenuHandler) DeleteCategory(c *gin.Context) {
	var category models.MenuCategory
	if err := h.db.First(&category, "id = ?", c.Param("categoryId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_category"})
		return
	}

	if err := h.db.Select("Items").Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_category"})
		return
	}

	h.dispatch(c, "menu_category_deleted", "menu_category", &category.ID)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Items ---------

func (h *MenuHandler) CreateItem(c *gin.Context) {
	categoryID, err := parseID(c.Param("categoryId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_category_id"})
		return
	}

	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var count int64
	h.db.Model(&models.MenuCategory{}).Where("id = ?", categoryID).Count(&count)
	if count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
		return
	}

	activeFrom, err := parseDate(req.ActiveFrom)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_active_from"})
		return
	}
	activeTo, err := parseDate(req.ActiveTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_active_to"})
		return
	}

	number := 0
	if req.Number != nil {
		number = *req.Number
	} else {
		// Printed ordinal defaults to max+1 within the category.
		var maxNumber int
		h.db.Model(&models.MenuItem{}).
			Where("category_id = ?", categoryID).
			Select("COALESCE(MAX(number), 0)").
			Scan(&maxNumber)
		number = maxNumber + 1
	}

	item := models.MenuItem{
		CategoryID:  categoryID,
		Number:      number,
		Title:       req.Title,
		Description: req.Description,
		Price:       *req.Price,
		ActiveFrom:  activeFrom,
		ActiveTo:    activeTo,
	}

	if err := h.db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_item"})
		return
	}

	h.dispatch(c, "menu_item_created", "menu_item", &item.ID)

	c.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) UpdateItem(c *gin.Context) {
	var item models.MenuItem
	if err := h.db.First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_item"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Number != nil {
		item.Number = *req.Number
	}
	if req.ActiveFrom != nil {
		from, err := parseDate(req.ActiveFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_active_from"})
			return
		}
		item.ActiveFrom = from
	}
	if req.ActiveTo != nil {
		to, err := parseDate(req.ActiveTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_active_to"})
			return
		}
		item.ActiveTo = to
	}

	if err := h.db.Save(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_item"})
		return
	}

	h.dispatch(c, "menu_item_updated", "menu_item", &item.ID)

	c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) DeleteItem(c *gin.Context) {
	res := h.db.Delete(&models.MenuItem{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_item"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "item_not_found"})
		return
	}

	h.dispatch(c, "menu_item_deleted", "menu_item", nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Public menu ---------

// GetMainMenu lists the fixed main card first, followed by every other card
// flagged for the main menu and currently inside its validity window.
func (h *MenuHandler) GetMainMenu(c *gin.Context) {
	now := time.Now()
	menu := make([]gin.H, 0, 4)

	var mainCard models.MenuCard
	err := h.db.Where("name = ?", MainMenuCardName).First(&mainCard).Error
	if err == nil {
		categories, cErr := h.loadCardContent(mainCard.ID, now)
		if cErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_menu"})
			return
		}
		menu = append(menu, h.cardResponse(mainCard, categories))
	} else if err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_menu"})
		return
	}

	var otherCards []models.MenuCard
	err = h.db.
		Where("include_in_main_menu = ? AND name != ?", true, MainMenuCardName).
		Where("(start_date IS NULL OR start_date <= ?) AND (end_date IS NULL OR end_date >= ?)", now, now).
		Order("start_date ASC NULLS FIRST").
		Find(&otherCards).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_menu"})
		return
	}

	for _, card := range otherCards {
		categories, cErr := h.loadCardContent(card.ID, now)
		if cErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_menu"})
			return
		}
		menu = append(menu, h.cardResponse(card, categories))
	}

	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) GetCard(c *gin.Context) {
	var card models.MenuCard
	if err := h.db.First(&card, "id = ?", c.Param("cardId")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "card_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_card"})
		return
	}

	categories, err := h.loadCardContent(card.ID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_load_card"})
		return
	}

	c.JSON(http.StatusOK, h.cardResponse(card, categories))
}

// --------- PDF regeneration trigger ---------

// RegeneratePdf runs the same regeneration path as the background scheduler,
// synchronously. Safe to call for a card that is not stale.
func (h *MenuHandler) RegeneratePdf(c *gin.Context) {
	cardID, err := parseID(c.Param("cardId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_card_id"})
		return
	}

	card, err := h.regen.Execute(c.Request.Context(), cardID)
	if err != nil {
		if httperr.IsBusiness(err, "card_not_found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "card_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pdf_generation_failed"})
		return
	}

	h.dispatch(c, "menu_card_pdf_regenerated", "menu_card", &card.ID)

	c.JSON(http.StatusOK, gin.H{
		"pdf_path":          card.PdfPath,
		"pdf_url":           h.pdfURL(card.PdfPath),
		"last_generated_at": card.LastGeneratedAt,
	})
}

// --------- helpers ---------

func (h *MenuHandler) loadCardContent(cardID uint, now time.Time) ([]models.MenuCategory, error) {
	var categories []models.MenuCategory
	err := h.db.
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

func (h *MenuHandler) cardResponse(card models.MenuCard, categories []models.MenuCategory) gin.H {
	return gin.H{
		"card":       card,
		"categories": categories,
		"pdf_url":    h.pdfURL(card.PdfPath),
	}
}

func (h *MenuHandler) pdfURL(relPath *string) *string {
	if relPath == nil {
		return nil
	}
	url := h.config.PublicBaseURL + "/uploads/" + *relPath
	return &url
}

func (h *MenuHandler) dispatch(c *gin.Context, action, entity string, entityID *uint) {
	var adminID *uint
	if v, ok := c.Get(middleware.ContextAdminID); ok {
		id := v.(uint)
		adminID = &id
	}
	h.audit.Dispatch(audit.Event{
		AdminID:  adminID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	})
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	return uint(id), err
}

// parseDate accepts "2006-01-02"; nil or empty means unset.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/middleware"
	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/storage"
)

type HomeHandler struct {
	db     *gorm.DB
	store  *storage.Local
	config *config.Config
	audit  *audit.Dispatcher
}

func NewHomeHandler(db *gorm.DB, store *storage.Local, cfg *config.Config, auditDisp *audit.Dispatcher) *HomeHandler {
	return &HomeHandler{db: db, store: store, config: cfg, audit: auditDisp}
}

func (h *HomeHandler) imageURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return h.config.PublicBaseURL + "/uploads/" + relPath
}

func (h *HomeHandler) Get(c *gin.Context) {
	var content models.HomeContent
	if err := h.db.Order("id DESC").First(&content).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_home_content"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_home_content"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           content.ID,
		"image":        h.imageURL(content.ImagePath),
		"welcome_text": content.WelcomeText,
		"welcome_link": content.WelcomeLink,
	})
}

func (h *HomeHandler) Create(c *gin.Context) {
	welcomeText := c.PostForm("welcome_text")
	welcomeLink := c.PostForm("welcome_link")

	file, err := c.FormFile("image")
	if err != nil || welcomeText == "" || welcomeLink == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_text_and_link_required"})
		return
	}

	var count int64
	h.db.Model(&models.HomeContent{}).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "home_content_already_exists"})
		return
	}

	rel := "home/" + h.store.NewFilename("home", file.Filename)
	abs, err := h.store.AbsPath(rel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
		return
	}
	if err := c.SaveUploadedFile(file, abs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
		return
	}

	content := models.HomeContent{
		ImagePath:   rel,
		WelcomeText: welcomeText,
		WelcomeLink: welcomeLink,
	}

	if err := h.db.Create(&content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_home_content"})
		return
	}

	h.dispatch(c, "home_content_created", content.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":    content.ID,
		"image": h.imageURL(content.ImagePath),
	})
}

func (h *HomeHandler) Update(c *gin.Context) {
	var content models.HomeContent
	if err := h.db.Order("id DESC").First(&content).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no_home_content_to_update"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_home_content"})
		return
	}

	if text := c.PostForm("welcome_text"); text != "" {
		content.WelcomeText = text
	}
	if link := c.PostForm("welcome_link"); link != "" {
		content.WelcomeLink = link
	}

	if file, err := c.FormFile("image"); err == nil {
		rel := "home/" + h.store.NewFilename("home", file.Filename)
		abs, err := h.store.AbsPath(rel)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
			return
		}
		if err := c.SaveUploadedFile(file, abs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
			return
		}

		if content.ImagePath != "" {
			_ = h.store.Remove(content.ImagePath)
		}
		content.ImagePath = rel
	}

	if err := h.db.Save(&content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_home_content"})
		return
	}

	h.dispatch(c, "home_content_updated", content.ID)

	c.JSON(http.StatusOK, gin.H{
		"id":    content.ID,
		"image": h.imageURL(content.ImagePath),
	})
}

func (h *HomeHandler) Delete(c *gin.Context) {
	var content models.HomeContent
	if err := h.db.Order("id DESC").First(&content).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_home_content"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_home_content"})
		return
	}

	if content.ImagePath != "" {
		_ = h.store.Remove(content.ImagePath)
	}

	if err := h.db.Delete(&content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_home_content"})
		return
	}

	h.dispatch(c, "home_content_deleted", content.ID)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HomeHandler) dispatch(c *gin.Context, action string, entityID uint) {
	var adminID *uint
	if v, ok := c.Get(middleware.ContextAdminID); ok {
		id := v.(uint)
		adminID = &id
	}
	h.audit.Dispatch(audit.Event{
		AdminID:  adminID,
		Action:   action,
		Entity:   "home_content",
		EntityID: &entityID,
	})
}

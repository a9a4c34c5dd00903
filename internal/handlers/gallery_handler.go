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

const maxGalleryUpload = 20

type GalleryHandler struct {
	db     *gorm.DB
	store  *storage.Local
	config *config.Config
	audit  *audit.Dispatcher
}

func NewGalleryHandler(db *gorm.DB, store *storage.Local, cfg *config.Config, auditDisp *audit.Dispatcher) *GalleryHandler {
	return &GalleryHandler{db: db, store: store, config: cfg, audit: auditDisp}
}

func (h *GalleryHandler) List(c *gin.Context) {
	var images []models.GalleryImage
	if err := h.db.Order("id DESC").Find(&images).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_gallery"})
		return
	}

	out := make([]gin.H, 0, len(images))
	for _, img := range images {
		out = append(out, gin.H{
			"id":         img.ID,
			"image":      h.config.PublicBaseURL + "/uploads/" + img.ImagePath,
			"created_at": img.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, out)
}

func (h *GalleryHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_multipart_form"})
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no_images_received"})
		return
	}
	if len(files) > maxGalleryUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too_many_images"})
		return
	}

	created := make([]uint, 0, len(files))
	for _, file := range files {
		rel := "gallery/" + h.store.NewFilename("gallery", file.Filename)
		abs, err := h.store.AbsPath(rel)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
			return
		}
		if err := c.SaveUploadedFile(file, abs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_store_image"})
			return
		}

		img := models.GalleryImage{ImagePath: rel}
		if err := h.db.Create(&img).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_image"})
			return
		}
		created = append(created, img.ID)
	}

	h.dispatch(c, "gallery_images_uploaded", nil, gin.H{"count": len(created)})

	c.JSON(http.StatusCreated, gin.H{"ids": created})
}

func (h *GalleryHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var img models.GalleryImage
	if err := h.db.First(&img, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "image_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_image"})
		return
	}

	_ = h.store.Remove(img.ImagePath)

	if err := h.db.Delete(&img).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_image"})
		return
	}

	h.dispatch(c, "gallery_image_deleted", &img.ID, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GalleryHandler) dispatch(c *gin.Context, action string, entityID *uint, meta any) {
	var adminID *uint
	if v, ok := c.Get(middleware.ContextAdminID); ok {
		id := v.(uint)
		adminID = &id
	}
	h.audit.Dispatch(audit.Event{
		AdminID:  adminID,
		Action:   action,
		Entity:   "gallery_image",
		EntityID: entityID,
		Metadata: meta,
	})
}

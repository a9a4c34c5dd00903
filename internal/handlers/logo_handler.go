package handlers

import (
	"encoding/base64"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/models"
)

type LogoHandler struct {
	db *gorm.DB
}

func NewLogoHandler(db *gorm.DB) *LogoHandler {
	return &LogoHandler{db: db}
}

// Get returns the stored logo as a base64 data URL; mails embed it directly.
func (h *LogoHandler) Get(c *gin.Context) {
	var logo models.Logo
	if err := h.db.Order("id DESC").First(&logo).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no_logo"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_logo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logo": logo.Data})
}

func (h *LogoHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "logo_file_required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_read_logo"})
		return
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_read_logo"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	data := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw)

	var logo models.Logo
	err = h.db.Order("id DESC").First(&logo).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		logo = models.Logo{Data: data}
		err = h.db.Create(&logo).Error
	case err == nil:
		logo.Data = data
		err = h.db.Save(&logo).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_logo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentLogo loads the logo for embedding into outgoing mail; absence is
// fine and yields an empty string.
func currentLogo(db *gorm.DB) string {
	var logo models.Logo
	if err := db.Order("id DESC").First(&logo).Error; err != nil {
		return ""
	}
	return logo.Data
}

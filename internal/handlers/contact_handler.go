package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/httpresp"
	"github.com/langhaus/website-backend/internal/mailer"
	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/validators"
)

type ContactHandler struct {
	db     *gorm.DB
	config *config.Config
	mail   *mailer.Mailer
	log    zerolog.Logger
}

func NewContactHandler(db *gorm.DB, cfg *config.Config, mail *mailer.Mailer, log zerolog.Logger) *ContactHandler {
	return &ContactHandler{db: db, config: cfg, mail: mail, log: log}
}

type CreateContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// Create stores a contact request, then notifies the restaurant inbox and
// confirms to the sender. The request is persisted first so mail failures
// never lose the message.
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email_domain"})
		return
	}

	request := models.ContactRequest{
		Name:    req.Name,
		Email:   email,
		Message: req.Message,
	}

	if err := h.db.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_contact_request"})
		return
	}

	logo := currentLogo(h.db)
	safeName := html.EscapeString(request.Name)
	safeMessage := html.EscapeString(request.Message)

	if h.config.ContactInbox != "" {
		body := fmt.Sprintf(
			"<p><strong>Von:</strong> %s (%s)</p><p>%s</p>",
			safeName, request.Email, safeMessage,
		)
		if err := h.mail.Send(
			[]string{h.config.ContactInbox},
			"Neue Kontaktanfrage von "+request.Name,
			mailer.Wrap("Neue Kontaktanfrage", body, logo),
		); err != nil {
			h.log.Warn().Err(err).Uint("request_id", request.ID).Msg("inbox notification failed")
		}
	}

	confirmation := fmt.Sprintf(
		"<p>Hallo %s,</p><p>vielen Dank für Ihre Nachricht. Wir melden uns so bald wie möglich bei Ihnen.</p>",
		safeName,
	)
	if err := h.mail.Send(
		[]string{request.Email},
		"Ihre Anfrage bei Restaurant Langhaus",
		mailer.Wrap("Anfrage erhalten", confirmation, logo),
	); err != nil {
		h.log.Warn().Err(err).Uint("request_id", request.ID).Msg("confirmation mail failed")
	}

	c.JSON(http.StatusCreated, gin.H{"id": request.ID, "status": "received"})
}

func (h *ContactHandler) List(c *gin.Context) {
	var requests []models.ContactRequest
	if err := h.db.Order("created_at DESC").Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_contact_requests"})
		return
	}

	httpresp.List(c, requests)
}

func (h *ContactHandler) GetByID(c *gin.Context) {
	var request models.ContactRequest
	if err := h.db.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact_request_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_contact_request"})
		return
	}

	c.JSON(http.StatusOK, request)
}

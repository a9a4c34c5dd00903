package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/dto"
	"github.com/langhaus/website-backend/internal/httpresp"
	"github.com/langhaus/website-backend/internal/imaging"
	"github.com/langhaus/website-backend/internal/mailer"
	"github.com/langhaus/website-backend/internal/middleware"
	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/validators"
)

type NewsletterHandler struct {
	db     *gorm.DB
	config *config.Config
	mail   *mailer.Mailer
	audit  *audit.Dispatcher
	log    zerolog.Logger
}

func NewNewsletterHandler(
	db *gorm.DB,
	cfg *config.Config,
	mail *mailer.Mailer,
	auditDisp *audit.Dispatcher,
	log zerolog.Logger,
) *NewsletterHandler {
	return &NewsletterHandler{db: db, config: cfg, mail: mail, audit: auditDisp, log: log}
}

type NewsletterSectionRequest struct {
	Subtitle string `json:"subtitle"`
	Image    string `json:"image"`
	Text     string `json:"text"`
	Link     string `json:"link"`
}

type CreateNewsletterRequest struct {
	Title    string                     `json:"title" binding:"required"`
	SendDate *string                    `json:"send_date"`
	Sections []NewsletterSectionRequest `json:"sections"`
}

type SubscribeRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Type      string `json:"type"`
}

type ImportSubscribersRequest struct {
	Subscribers []SubscribeRequest `json:"subscribers" binding:"required"`
}

// Create stores a newsletter draft. Section images arrive as data URLs and
// are downscaled on intake; an image that cannot be decoded is dropped with
// a warning instead of failing the whole draft.
func (h *NewsletterHandler) Create(c *gin.Context) {
	var req CreateNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	sendDate := time.Now()
	if req.SendDate != nil && *req.SendDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.SendDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_send_date"})
			return
		}
		sendDate = parsed
	}

	newsletter := models.Newsletter{
		Title:    req.Title,
		SendDate: sendDate,
	}

	for _, s := range req.Sections {
		section := models.NewsletterSection{
			Subtitle: s.Subtitle,
			Text:     s.Text,
			Link:     s.Link,
		}
		if s.Image != "" {
			normalized, err := imaging.NormalizeDataURL(s.Image)
			if err != nil {
				h.log.Warn().Err(err).Str("subtitle", s.Subtitle).
					Msg("section image rejected, storing section without image")
			} else {
				section.Image = normalized
			}
		}
		newsletter.Sections = append(newsletter.Sections, section)
	}

	if err := h.db.Create(&newsletter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_newsletter"})
		return
	}

	h.dispatch(c, "newsletter_created", "newsletter", &newsletter.ID)

	c.JSON(http.StatusCreated, newsletter)
}

// List returns sent newsletters only, newest first. Drafts stay private to
// the editing flow.
func (h *NewsletterHandler) List(c *gin.Context) {
	var newsletters []models.Newsletter
	err := h.db.
		Where("is_sent = ?", true).
		Order("send_date DESC").
		Find(&newsletters).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_newsletters"})
		return
	}

	c.JSON(http.StatusOK, newsletters)
}

func (h *NewsletterHandler) GetByID(c *gin.Context) {
	var newsletter models.Newsletter
	err := h.db.Preload("Sections").First(&newsletter, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "newsletter_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_newsletter"})
		return
	}

	c.JSON(http.StatusOK, newsletter)
}

// Send mails the newsletter to every active subscriber, one message per
// recipient so each mail carries a personal unsubscribe link.
func (h *NewsletterHandler) Send(c *gin.Context) {
	var newsletter models.Newsletter
	err := h.db.Preload("Sections").First(&newsletter, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "newsletter_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_newsletter"})
		return
	}

	var subscribers []models.NewsletterSubscriber
	if err := h.db.Where("unsubscribed_at IS NULL").Find(&subscribers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_subscribers"})
		return
	}

	logo := currentLogo(h.db)
	body := h.renderBody(newsletter)

	sent, failed := 0, 0
	for _, sub := range subscribers {
		unsubscribe := fmt.Sprintf(
			`<p style="font-size:12px; color:#999;"><a href="%s/api/newsletter/unsubscribe?token=%s">Newsletter abbestellen</a></p>`,
			h.config.PublicBaseURL, sub.UnsubscribeToken,
		)
		html := mailer.Wrap(newsletter.Title, body+unsubscribe, logo)
		if err := h.mail.Send([]string{sub.Email}, newsletter.Title, html); err != nil {
			failed++
			continue
		}
		sent++
	}

	newsletter.IsSent = true
	newsletter.SendDate = time.Now()
	if err := h.db.Save(&newsletter).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_mark_sent"})
		return
	}

	h.dispatch(c, "newsletter_sent", "newsletter", &newsletter.ID)

	c.JSON(http.StatusOK, gin.H{"sent": sent, "failed": failed})
}

func (h *NewsletterHandler) renderBody(newsletter models.Newsletter) string {
	var b strings.Builder
	for _, s := range newsletter.Sections {
		b.WriteString(`<div style="margin-bottom:24px;">`)
		if s.Subtitle != "" {
			b.WriteString("<h3>" + s.Subtitle + "</h3>")
		}
		if s.Image != "" {
			b.WriteString(fmt.Sprintf(`<img src="%s" alt="" style="max-width:100%%;" />`, s.Image))
		}
		if s.Text != "" {
			b.WriteString("<p>" + s.Text + "</p>")
		}
		if s.Link != "" {
			b.WriteString(fmt.Sprintf(`<p><a href="%s">%s</a></p>`, s.Link, s.Link))
		}
		b.WriteString("</div>")
	}
	return b.String()
}

// Subscribe registers a public subscriber. A previously unsubscribed address
// is reactivated instead of duplicated.
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
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

	var sub models.NewsletterSubscriber
	err := h.db.Where("email = ?", email).First(&sub).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		sub = models.NewsletterSubscriber{
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			Email:            email,
			Type:             req.Type,
			UnsubscribeToken: newUnsubscribeToken(),
			SubscribedAt:     time.Now(),
		}
		err = h.db.Create(&sub).Error
	case err == nil:
		if sub.UnsubscribedAt == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "already_subscribed"})
			return
		}
		sub.UnsubscribedAt = nil
		sub.SubscribedAt = time.Now()
		if sub.UnsubscribeToken == "" {
			sub.UnsubscribeToken = newUnsubscribeToken()
		}
		err = h.db.Save(&sub).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_subscribe"})
		return
	}

	logo := currentLogo(h.db)
	body := fmt.Sprintf(
		"<p>Hallo %s,</p><p>vielen Dank für Ihre Anmeldung zu unserem Newsletter.</p>",
		strings.TrimSpace(sub.FirstName+" "+sub.LastName),
	)
	if err := h.mail.Send([]string{sub.Email}, "Newsletter Anmeldung", mailer.Wrap("Willkommen", body, logo)); err != nil {
		h.log.Warn().Err(err).Str("email", sub.Email).Msg("confirmation mail failed")
	}

	c.JSON(http.StatusCreated, gin.H{"status": "subscribed"})
}

// Unsubscribe handles the link embedded in newsletter mails, so it answers
// with a small HTML page rather than JSON.
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
			[]byte("<h3>Ungültiger Abmeldelink.</h3>"))
		return
	}

	var sub models.NewsletterSubscriber
	if err := h.db.Where("unsubscribe_token = ?", token).First(&sub).Error; err != nil {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8",
			[]byte("<h3>Dieser Abmeldelink ist nicht mehr gültig.</h3>"))
		return
	}

	if sub.UnsubscribedAt == nil {
		now := time.Now()
		sub.UnsubscribedAt = &now
		if err := h.db.Save(&sub).Error; err != nil {
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
				[]byte("<h3>Abmeldung fehlgeschlagen, bitte später erneut versuchen.</h3>"))
			return
		}
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte("<h3>Sie wurden vom Newsletter abgemeldet.</h3>"))
}

func (h *NewsletterHandler) ListSubscribers(c *gin.Context) {
	var subscribers []models.NewsletterSubscriber
	if err := h.db.Order("subscribed_at DESC").Find(&subscribers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_subscribers"})
		return
	}

	out := make([]dto.SubscriberListDTO, 0, len(subscribers))
	for _, sub := range subscribers {
		status := "active"
		if sub.UnsubscribedAt != nil {
			status = "inactive"
		}
		out = append(out, dto.SubscriberListDTO{
			ID:             sub.ID,
			FirstName:      sub.FirstName,
			LastName:       sub.LastName,
			Email:          sub.Email,
			SubscribedAt:   sub.SubscribedAt,
			UnsubscribedAt: sub.UnsubscribedAt,
			Status:         status,
		})
	}

	httpresp.List(c, out)
}

// Import bulk-loads subscribers, skipping addresses that already exist.
// Imported addresses get no confirmation mail.
func (h *NewsletterHandler) Import(c *gin.Context) {
	var req ImportSubscribersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	imported, skipped := 0, 0
	for _, entry := range req.Subscribers {
		email := strings.ToLower(strings.TrimSpace(entry.Email))
		if email == "" {
			skipped++
			continue
		}

		var count int64
		h.db.Model(&models.NewsletterSubscriber{}).Where("email = ?", email).Count(&count)
		if count > 0 {
			skipped++
			continue
		}

		sub := models.NewsletterSubscriber{
			FirstName:        entry.FirstName,
			LastName:         entry.LastName,
			Email:            email,
			Type:             entry.Type,
			UnsubscribeToken: newUnsubscribeToken(),
			SubscribedAt:     time.Now(),
		}
		if err := h.db.Create(&sub).Error; err != nil {
			skipped++
			continue
		}
		imported++
	}

	h.dispatch(c, "subscribers_imported", "newsletter_subscriber", nil)

	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

func (h *NewsletterHandler) dispatch(c *gin.Context, action, entity string, entityID *uint) {
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

func newUnsubscribeToken() string {
	buf := make([]byte, 20)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

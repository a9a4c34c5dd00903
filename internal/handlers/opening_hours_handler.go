package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/middleware"
	"github.com/langhaus/website-backend/internal/models"
	"github.com/langhaus/website-backend/internal/schedule"
)

const (
	openingHoursCacheKey = "opening_hours:v1"
	openingHoursCacheTTL = 10 * time.Minute
)

type OpeningHoursHandler struct {
	db    *gorm.DB
	cache *redis.Client // nil disables caching
	audit *audit.Dispatcher
}

func NewOpeningHoursHandler(db *gorm.DB, cache *redis.Client, auditDisp *audit.Dispatcher) *OpeningHoursHandler {
	return &OpeningHoursHandler{db: db, cache: cache, audit: auditDisp}
}

type AddTimeBlockRequest struct {
	Weekday   string  `json:"weekday" binding:"required"`
	Category  *string `json:"category"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

// Get returns the compressed public opening hours. Always 200 with a
// (possibly empty) list.
func (h *OpeningHoursHandler) Get(c *gin.Context) {
	if h.cache != nil {
		if cached, err := h.cache.Get(c.Request.Context(), openingHoursCacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	// Category first so the first-seen emission order of the compressor is
	// deterministic; weekday and start time follow the canonical display
	// order.
	var rows []models.OpeningTime
	if err := h.db.
		Order("COALESCE(category, '') ASC").
		Order(weekdayOrderExpr()).
		Order("start_time ASC NULLS FIRST").
		Find(&rows).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_opening_hours"})
		return
	}

	entries := schedule.Compress(rows)
	if entries == nil {
		entries = []schedule.Entry{}
	}

	if h.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			h.cache.Set(c.Request.Context(), openingHoursCacheKey, payload, openingHoursCacheTTL)
		}
	}

	c.JSON(http.StatusOK, entries)
}

func (h *OpeningHoursHandler) AddBlock(c *gin.Context) {
	var req AddTimeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if !schedule.IsWeekday(req.Weekday) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_weekday"})
		return
	}

	hasStart := req.StartTime != nil && *req.StartTime != ""
	hasEnd := req.EndTime != nil && *req.EndTime != ""

	// Both or neither: a half-set pair would store ambiguous state.
	if hasStart != hasEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_pair"})
		return
	}

	block := models.OpeningTime{Weekday: req.Weekday}

	if req.Category != nil && *req.Category != "" {
		block.Category = req.Category
	}

	if hasStart {
		start, okStart := normalizeClock(*req.StartTime)
		end, okEnd := normalizeClock(*req.EndTime)
		if !okStart || !okEnd {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_format"})
			return
		}
		if end <= start {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_before_start"})
			return
		}
		block.StartTime = &start
		block.EndTime = &end
	}

	if err := h.db.Create(&block).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_time_block"})
		return
	}

	h.invalidateCache(c)
	h.dispatch(c, "opening_time_added", &block.ID)

	c.JSON(http.StatusCreated, block)
}

func (h *OpeningHoursHandler) DeleteBlock(c *gin.Context) {
	id := c.Param("id")

	res := h.db.Delete(&models.OpeningTime{}, "id = ?", id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_time_block"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "time_block_not_found"})
		return
	}

	h.invalidateCache(c)
	h.dispatch(c, "opening_time_deleted", nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *OpeningHoursHandler) invalidateCache(c *gin.Context) {
	if h.cache != nil {
		h.cache.Del(c.Request.Context(), openingHoursCacheKey)
	}
}

func (h *OpeningHoursHandler) dispatch(c *gin.Context, action string, entityID *uint) {
	var adminID *uint
	if v, ok := c.Get(middleware.ContextAdminID); ok {
		id := v.(uint)
		adminID = &id
	}
	h.audit.Dispatch(audit.Event{
		AdminID:  adminID,
		Action:   action,
		Entity:   "opening_time",
		EntityID: entityID,
	})
}

func weekdayOrderExpr() string {
	return `CASE weekday
		WHEN 'Mon' THEN 0 WHEN 'Tue' THEN 1 WHEN 'Wed' THEN 2 WHEN 'Thu' THEN 3
		WHEN 'Fri' THEN 4 WHEN 'Sat' THEN 5 WHEN 'Sun' THEN 6 ELSE 7 END`
}

// normalizeClock accepts "HH:MM" or "HH:MM:SS" and returns "HH:MM".
func normalizeClock(s string) (string, bool) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), true
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04"), true
	}
	return "", false
}

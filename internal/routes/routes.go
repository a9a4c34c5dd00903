package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/config"
	"github.com/langhaus/website-backend/internal/handlers"
	"github.com/langhaus/website-backend/internal/mailer"
	"github.com/langhaus/website-backend/internal/middleware"
	"github.com/langhaus/website-backend/internal/storage"
	ucmenu "github.com/langhaus/website-backend/internal/usecase/menu"
)

// Deps are the shared singletons built in main; the PDF regeneration use
// case is the same instance the background scheduler runs, so manual and
// scheduled runs share per-card locking.
type Deps struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Local
	Cache *redis.Client
	Mail  *mailer.Mailer
	Audit *audit.Dispatcher
	Regen *ucmenu.RegenerateCardPDF
	Log   zerolog.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Cfg, d.Audit)
	homeHandler := handlers.NewHomeHandler(d.DB, d.Store, d.Cfg, d.Audit)
	galleryHandler := handlers.NewGalleryHandler(d.DB, d.Store, d.Cfg, d.Audit)
	logoHandler := handlers.NewLogoHandler(d.DB)
	openingHoursHandler := handlers.NewOpeningHoursHandler(d.DB, d.Cache, d.Audit)
	menuHandler := handlers.NewMenuHandler(d.DB, d.Store, d.Cfg, d.Regen, d.Audit)
	newsletterHandler := handlers.NewNewsletterHandler(d.DB, d.Cfg, d.Mail, d.Audit, d.Log)
	contactHandler := handlers.NewContactHandler(d.DB, d.Cfg, d.Mail, d.Log)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB)

	// ======================================================
	// STATIC FILES (uploads, generated PDFs)
	// ======================================================
	r.Static("/uploads", d.Store.BaseDir())

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		api.GET("/home", homeHandler.Get)
		api.GET("/gallery", galleryHandler.List)
		api.GET("/logo", logoHandler.Get)
		api.GET("/opening-hours", openingHoursHandler.Get)

		api.GET("/menu", menuHandler.GetMainMenu)
		api.GET("/menu/cards/:cardId", menuHandler.GetCard)

		api.POST("/newsletter/subscribe", newsletterHandler.Subscribe)
		api.GET("/newsletter/unsubscribe", newsletterHandler.Unsubscribe)

		api.POST("/contact", contactHandler.Create)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/bootstrap", authHandler.Bootstrap)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API (admin)
		// ------------------------------
		secured := api.Group("/admin")
		secured.Use(middleware.AuthMiddleware(d.Cfg))
		{
			secured.GET("/profile", authHandler.GetProfile)
			secured.PATCH("/profile", authHandler.UpdateProfile)

			secured.POST("/home", homeHandler.Create)
			secured.PATCH("/home", homeHandler.Update)
			secured.DELETE("/home", homeHandler.Delete)

			secured.POST("/gallery", galleryHandler.Upload)
			secured.DELETE("/gallery/:id", galleryHandler.Delete)

			secured.POST("/logo", logoHandler.Upload)

			secured.POST("/opening-hours", openingHoursHandler.AddBlock)
			secured.DELETE("/opening-hours/:id", openingHoursHandler.DeleteBlock)

			// ------------------------------
			// MENU
			// ------------------------------
			secured.GET("/menu/cards", menuHandler.ListCards)
			secured.POST("/menu/cards", menuHandler.CreateCard)
			secured.PATCH("/menu/cards/:cardId", menuHandler.UpdateCard)
			secured.DELETE("/menu/cards/:cardId", menuHandler.DeleteCard)
			secured.POST("/menu/cards/:cardId/pdf", menuHandler.RegeneratePdf)

			secured.POST("/menu/cards/:cardId/categories", menuHandler.CreateCategory)
			secured.GET("/menu/categories/:categoryId", menuHandler.GetCategory)
			secured.DELETE("/menu/categories/:categoryId", menuHandler.DeleteCategory)

			secured.POST("/menu/categories/:categoryId/items", menuHandler.CreateItem)
			secured.PATCH("/menu/items/:id", menuHandler.UpdateItem)
			secured.DELETE("/menu/items/:id", menuHandler.DeleteItem)

			// ------------------------------
			// NEWSLETTER
			// ------------------------------
			secured.POST("/newsletter", newsletterHandler.Create)
			secured.GET("/newsletter", newsletterHandler.List)
			secured.GET("/newsletter/:id", newsletterHandler.GetByID)
			secured.POST("/newsletter/:id/send", newsletterHandler.Send)

			secured.GET("/newsletter-subscribers", newsletterHandler.ListSubscribers)
			secured.POST("/newsletter-subscribers/import", newsletterHandler.Import)

			secured.GET("/contact-requests", contactHandler.List)
			secured.GET("/contact-requests/:id", contactHandler.GetByID)

			secured.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}

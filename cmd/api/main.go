package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/langhaus/website-backend/internal/audit"
	"github.com/langhaus/website-backend/internal/config"
	dbpkg "github.com/langhaus/website-backend/internal/db"
	infraRepo "github.com/langhaus/website-backend/internal/infra/repository"
	"github.com/langhaus/website-backend/internal/mailer"
	"github.com/langhaus/website-backend/internal/pdf"
	"github.com/langhaus/website-backend/internal/routes"
	"github.com/langhaus/website-backend/internal/storage"
	"github.com/langhaus/website-backend/internal/timezone"
	ucmenu "github.com/langhaus/website-backend/internal/usecase/menu"
)

func main() {

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.UploadDir).Msg("upload dir unavailable")
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	mail := mailer.New(cfg, log.With().Str("component", "mailer").Logger())

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log.With().Str("component", "audit").Logger())

	menuRepo := infraRepo.NewMenuGormRepository(db)
	cardBuilder := pdf.NewCardBuilder(store, timezone.Location(cfg.Timezone))
	regen := ucmenu.NewRegenerateCardPDF(
		menuRepo,
		cardBuilder,
		store,
		log.With().Str("component", "pdf_regen").Logger(),
	)
	tracker := ucmenu.NewStalenessTracker(menuRepo)
	scheduler := ucmenu.NewScheduler(
		cfg.PdfRegenInterval,
		menuRepo,
		tracker,
		regen,
		log.With().Str("component", "pdf_scheduler").Logger(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Start(ctx)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, routes.Deps{
		DB:    db,
		Cfg:   cfg,
		Store: store,
		Cache: cache,
		Mail:  mail,
		Audit: auditDispatcher,
		Regen: regen,
		Log:   log,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

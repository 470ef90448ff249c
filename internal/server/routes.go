package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mxppxm/english-tutor/internal/config"
	"github.com/mxppxm/english-tutor/internal/core/analyze"
	"github.com/mxppxm/english-tutor/internal/core/history"
	"github.com/mxppxm/english-tutor/internal/core/job"
	"github.com/mxppxm/english-tutor/internal/core/ocr"
	"github.com/mxppxm/english-tutor/internal/core/wordbook"
	"github.com/mxppxm/english-tutor/internal/health"
	"github.com/mxppxm/english-tutor/internal/platform/redis"
	"github.com/mxppxm/english-tutor/internal/store"
)

type Dependencies struct {
	Config  config.Config
	Analyze *analyze.Service
	Gateway ocr.Gateway
	Job     *job.Service
	Store   *store.Store
	Redis   *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	// Health endpoints
	healthHandler := health.NewHealthHandler(d.Store, d.Redis)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	api := app.Group("/v1")

	analyzeHandler := analyze.NewHandler(d.Analyze, d.Store)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/preprocess", analyzeHandler.HandlePreprocess)

	if d.Job != nil {
		jobHandler := job.NewHandler(d.Job)
		api.Post("/analyze/jobs", jobHandler.HandleCreate)
		api.Get("/analyze/jobs/:jobId", jobHandler.HandleGet)
	}

	ocrHandler := ocr.NewHandler(d.Config, d.Gateway)
	api.Post("/ocr", ocrHandler.HandleOCR)

	historyHandler := history.NewHandler(d.Store)
	api.Get("/history", historyHandler.HandleList)
	api.Get("/history/:id", historyHandler.HandleGet)
	api.Delete("/history/:id", historyHandler.HandleDelete)
	api.Delete("/history", historyHandler.HandleClear)

	wordbookHandler := wordbook.NewHandler(d.Store)
	api.Post("/wordbook", wordbookHandler.HandleAdd)
	api.Get("/wordbook", wordbookHandler.HandleList)
	api.Delete("/wordbook/:id", wordbookHandler.HandleDelete)
	api.Put("/wordbook/mastered/:word", wordbookHandler.HandleMaster)
	api.Delete("/wordbook/mastered/:word", wordbookHandler.HandleUnmaster)
	api.Get("/wordbook/mastered", wordbookHandler.HandleListMastered)

	return healthHandler
}

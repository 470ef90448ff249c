package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/mxppxm/english-tutor/internal/config"
	"github.com/mxppxm/english-tutor/internal/core/analyze"
	"github.com/mxppxm/english-tutor/internal/core/job"
	"github.com/mxppxm/english-tutor/internal/llm"
	"github.com/mxppxm/english-tutor/internal/logger"
	rds "github.com/mxppxm/english-tutor/internal/platform/redis"
	tasks "github.com/mxppxm/english-tutor/internal/platform/tasks"
	"github.com/mxppxm/english-tutor/internal/server"
	"github.com/mxppxm/english-tutor/internal/store"
	"github.com/mxppxm/english-tutor/internal/vocab"
	"github.com/mxppxm/english-tutor/internal/worker"
)

func main() {
	cfg := config.Load()
	log.Printf("[english-tutor] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	// SQLite store
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer st.Close()

	// Redis is optional: without it the service still answers synchronous
	// requests, just without caching or background jobs.
	var redisSvc *rds.Service
	if cfg.RedisAddr != "" {
		redisSvc, err = rds.New(rds.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logr.LogWarnf("redis unavailable, continuing without cache/queue: %v", err)
			redisSvc = nil
		} else {
			defer redisSvc.Close()
		}
	}

	// LLM gateway
	gateway := llm.NewClient(llm.Options{
		DoubaoBaseURL: cfg.DoubaoBaseURL,
		GeminiBaseURL: cfg.GeminiBaseURL,
	})

	// Vocabulary library
	library := vocab.NewLibrary(cfg.VocabularyDir)

	// Core services
	analyzeSvc := analyze.NewService(cfg, gateway, library, redisSvc)

	var (
		jobSvc      *job.Service
		taskClient  *tasks.Client
		asynqServer *asynq.Server
	)
	if redisSvc != nil {
		taskClient = tasks.New(redisSvc)
		defer taskClient.Close()
		asynqServer = asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{"default": 1},
		})
		jobSvc = job.NewService(redisSvc, analyzeSvc, taskClient, cfg.TaskMaxRetries)

		mux := worker.NewMux()
		mux.HandleFunc(job.TaskTypeAnalyze, jobSvc.HandleAnalyzeTask)
		go func() {
			if err := asynqServer.Start(mux.Mux()); err != nil {
				log.Printf("[worker] stopped: %v\n", err)
			}
		}()
	}

	// Periodic history cleanup
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.HistoryCleanupSpec, func() {
		cutoff := time.Now().AddDate(0, 0, -cfg.HistoryRetentionDays)
		n, err := st.PurgeHistoryBefore(cutoff)
		if err != nil {
			logr.LogErrorf("history cleanup failed: %v", err)
			return
		}
		if n > 0 {
			logr.LogInfof("history cleanup removed %d records older than %s", n, cutoff.Format("2006-01-02"))
		}
	}); err != nil {
		log.Fatalf("scheduling history cleanup: %v", err)
	}
	scheduler.Start()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName:   "English Tutor Engine",
		BodyLimit: 20 * 1024 * 1024,
		// Wrong-method and not-found responses stay JSON like everything else.
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	deps := server.Dependencies{
		Config:  cfg,
		Analyze: analyzeSvc,
		Gateway: gateway,
		Job:     jobSvc,
		Store:   st,
		Redis:   redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(2 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		scheduler.Stop()
		if asynqServer != nil {
			asynqServer.Shutdown()
		}
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}

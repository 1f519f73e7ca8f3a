package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/stayloft/stayloft/internal/cache"
	"github.com/stayloft/stayloft/internal/config"
	"github.com/stayloft/stayloft/internal/database"
	"github.com/stayloft/stayloft/internal/handler"
	"github.com/stayloft/stayloft/internal/queue"
	"github.com/stayloft/stayloft/internal/repository"
	"github.com/stayloft/stayloft/internal/router"
	"github.com/stayloft/stayloft/internal/storage"
	"github.com/stayloft/stayloft/internal/web"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is unreachable; cache and limiter pass through
	views := cache.NewViews(rdb, cacheCfg.Prefix)

	store, err := storage.NewLocal(cfg.UploadDir, cfg.BaseURL+"/uploads")
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	properties := repository.NewPropertyRepo(db)
	bookings := repository.NewBookingRepo(db)

	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("templates: %v", err)
	}
	e.Renderer = renderer

	router.RegisterRoutes(e, router.Deps{
		Cfg:        cfg,
		CacheCfg:   cacheCfg,
		RateCfg:    rateCfg,
		Redis:      rdb,
		Views:      views,
		Auth:       handler.NewAuthHandler(cfg, users, tokens),
		Properties: handler.NewPropertyHandler(properties, bookings, users, views),
		Bookings:   handler.NewBookingHandler(bookings, properties, views),
		Upload:     handler.NewUploadHandler(store),
		Pages:      web.NewPages(properties, bookings),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

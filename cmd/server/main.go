package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/grassly/grassly/internal/cache"
	"github.com/grassly/grassly/internal/config"
	"github.com/grassly/grassly/internal/database"
	"github.com/grassly/grassly/internal/handler"
	appmw "github.com/grassly/grassly/internal/middleware"
	"github.com/grassly/grassly/internal/repository"
	"github.com/grassly/grassly/internal/router"
)

func main() {
	// Load .env if present; real environments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// Redis is optional: a nil client degrades the rate limiter to its
	// in-memory buckets and disables the fields cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, using in-process rate limiting and no cache")
	}

	users := repository.NewUserRepo(db)
	fields := repository.NewFieldRepo(db)
	fieldsCache := cache.NewFields(config.LoadCacheConfig(), rdb)

	authH := handler.NewAuthHandler(cfg, users)
	fieldH := handler.NewFieldHandler(fields, fieldsCache)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	router.Register(e, cfg, authH, fieldH, limiter, fieldsCache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBPath)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

package main // Entry point package

import (
	"log"  // Logging library
	"time" // TTL conversion for token lifetimes

	"github.com/labstack/echo/v4"                        // Echo web framework
	echomiddleware "github.com/labstack/echo/v4/middleware" // Echo built-in middleware

	"github.com/iliyamo/movie-auth-service/internal/auth"
	"github.com/iliyamo/movie-auth-service/internal/cache"
	"github.com/iliyamo/movie-auth-service/internal/config"
	"github.com/iliyamo/movie-auth-service/internal/database"
	"github.com/iliyamo/movie-auth-service/internal/handler"
	"github.com/iliyamo/movie-auth-service/internal/middleware"
	"github.com/iliyamo/movie-auth-service/internal/queue"
	"github.com/iliyamo/movie-auth-service/internal/repository"
	"github.com/iliyamo/movie-auth-service/internal/router"
)

func main() {
	cfg := config.Load() // Load environment config

	// Database: open the pool and bring the schema up to date.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.ApplyMigrations(db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	// Redis backs the token deny list; without it no token can be trusted,
	// so a failed connection aborts startup.
	rdb, err := config.NewRedisClient()
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	revocation := cache.New(rdb)
	defer revocation.Close()

	keys, err := auth.LoadKeyPair(cfg.PrivateKeyFile, cfg.PublicKeyFile)
	if err != nil {
		log.Fatalf("load signing keys: %v", err)
	}
	tokens := auth.NewTokenService(keys,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLMin)*time.Minute,
		revocation)

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	perms := repository.NewPermissionRepo(db)

	authHandler := handler.NewAuthHandler(users, tokens)
	userHandler := handler.NewUserHandler(cfg, users)
	roleHandler := handler.NewRoleHandler(roles)
	permHandler := handler.NewPermissionHandler(perms)

	authorize := middleware.Authorize(tokens, users)
	ratelimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New() // Create Echo instance
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, authorize, ratelimit)
	router.RegisterUsers(e, userHandler, authorize)
	router.RegisterRBAC(e, roleHandler, permHandler, authorize)

	// Audit consumer runs for the life of the process and reconnects on its own.
	go func() {
		if err := queue.StartAuthConsumer(); err != nil {
			log.Printf("auth consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"estateguard/internal/account"
	"estateguard/internal/aml"
	"estateguard/internal/audit"
	"estateguard/internal/handler"
	"estateguard/internal/kyc"
	"estateguard/internal/middleware"
	"estateguard/internal/repository/postgres"
	"estateguard/internal/risk"
	"estateguard/pkg/cache"
	"estateguard/pkg/config"
	"estateguard/pkg/logger"
	"estateguard/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("compliance-service")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting Compliance Service", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Redis connected", nil)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	decisionRepo := postgres.NewKYCDecisionRepository(db)
	amlRepo := postgres.NewAMLRecordRepository(db)
	txRepo := postgres.NewTransactionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services. The risk service owns the profile cache, so every service
	// that changes user state gets it as the invalidation hook.
	riskThresholds := risk.NewThresholds(cfg.Risk.HighVolumeThreshold, cfg.Risk.MediumVolumeThreshold)
	profileCache := cache.New(redisClient)
	riskService := risk.NewService(userRepo, amlRepo, txRepo, auditRepo, profileCache, riskThresholds, log)
	kycService := kyc.NewService(userRepo, decisionRepo, riskService, log)
	amlRule := aml.NewRule(cfg.AML.AmountThreshold, cfg.AML.FrequencyThreshold)
	amlService := aml.NewService(userRepo, amlRepo, amlRule, log)
	accountService := account.NewService(userRepo, riskService, log)
	auditService := audit.NewService(auditRepo)

	// Handlers
	val := validator.New()
	kycHandler := handler.NewKYCHandler(kycService, val, log)
	amlHandler := handler.NewAMLHandler(amlService, val, log)
	riskHandler := handler.NewRiskHandler(riskService, log)
	accountHandler := handler.NewAccountHandler(accountService, val, log)
	auditHandler := handler.NewAuditHandler(auditService, log)
	systemHandler := handler.NewSystemHandler(db, redisClient, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.NewRateLimiter(redisClient, 150, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	idemMW := middleware.NewIdempotencyMiddleware(redisClient, 24*time.Hour)

	// Health check (no auth)
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")

	// Back-office routes, restricted to compliance officers
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.RequireRole(middleware.RoleComplianceOfficer))
	api.Use(middleware.NewRateLimiter(redisClient, 60, time.Minute).Limit)

	api.HandleFunc("/kyc/users", kycHandler.ListUsers).Methods("GET")
	api.HandleFunc("/kyc/users/{id}/status", kycHandler.GetStatus).Methods("GET")
	api.HandleFunc("/kyc/users/{id}/history", kycHandler.History).Methods("GET")
	api.Handle("/kyc/users/{id}/review", idemMW.Require(http.HandlerFunc(kycHandler.Review))).Methods("POST")

	api.Handle("/aml/evaluate", idemMW.Require(http.HandlerFunc(amlHandler.Evaluate))).Methods("POST")
	api.HandleFunc("/aml/users/{id}/records", amlHandler.ListRecords).Methods("GET")

	api.HandleFunc("/risk/profiles", riskHandler.ListProfiles).Methods("GET")
	api.HandleFunc("/risk/users/{id}", riskHandler.GetProfile).Methods("GET")
	api.HandleFunc("/risk/users/{id}/recompute", riskHandler.Recompute).Methods("POST")

	api.Handle("/accounts/{id}/freeze", idemMW.Require(http.HandlerFunc(accountHandler.Freeze))).Methods("POST")
	api.Handle("/accounts/{id}/unfreeze", idemMW.Require(http.HandlerFunc(accountHandler.Unfreeze))).Methods("POST")

	api.HandleFunc("/audit", auditHandler.List).Methods("GET")

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("Compliance Service started", map[string]interface{}{"addr": srv.Addr})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", nil)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jobreadyai/backend/internal/config"
	"github.com/jobreadyai/backend/internal/database"
	"github.com/jobreadyai/backend/internal/generation"
	"github.com/jobreadyai/backend/internal/handlers"
	"github.com/jobreadyai/backend/internal/payments"
	"github.com/jobreadyai/backend/internal/repository"
	cronjobs "github.com/jobreadyai/backend/internal/scheduler"
	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/logger"
	"github.com/jobreadyai/backend/pkg/middleware"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	if cfg.MongoURI == "" || cfg.JWTSecret == "" {
		log.Fatal("MONGO_URI and JWT_SECRET must be set")
	}

	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)

	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Index creation error: %v", err)
	}

	// --- External clients ---
	generator := generation.NewClient(cfg.GeminiAPIKey)
	var verifier services.PaymentVerifier
	if cfg.FlwSecretKey != "" {
		verifier = payments.NewFlutterwaveVerifier(cfg.FlwSecretKey)
	} else {
		logger.Log.Warn("No payment secret configured, upgrades are not verified server-side")
	}

	// --- Services ---
	userService := services.NewUserService(userRepo, cfg.AppBaseURL)
	planService := services.NewPlanService(userRepo, verifier)
	docService := services.NewDocumentService(docRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, cfg)
	userHandler := handlers.NewUserHandler(userService, planService)
	docHandler := handlers.NewDocumentHandler(docService)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir)
	generateHandler := handlers.NewGenerateHandler(generator, planService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public auth routes
	router.HandleFunc("/auth/signup", authHandler.SignupHandler).Methods("POST")
	router.HandleFunc("/auth/login", authHandler.LoginHandler).Methods("POST")
	router.HandleFunc("/auth/forgot-password", authHandler.ForgotPasswordHandler).Methods("POST")
	router.HandleFunc("/auth/reset-password", authHandler.ResetPasswordHandler).Methods("POST")

	// Public share link
	router.HandleFunc("/share/{id}", docHandler.ShareHandler).Methods("GET")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/user").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/consumeToken", userHandler.ConsumeTokenHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/upgradePlan", userHandler.UpgradePlanHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/documents", docHandler.CreateDocumentHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/documents/{id}", docHandler.UpdateDocumentHandler).Methods("PUT")
	protectedUserRoutes.HandleFunc("/documents/{id}", docHandler.DeleteDocumentHandler).Methods("DELETE")
	protectedUserRoutes.HandleFunc("/documents/{id}/publish", docHandler.PublishDocumentHandler).Methods("POST")

	// Generation and uploads (both token-gated behind auth)
	protectedRoutes := router.PathPrefix("").Subrouter()
	protectedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedRoutes.HandleFunc("/generate", generateHandler.GenerateDocumentHandler).Methods("POST")
	protectedRoutes.HandleFunc("/upload", uploadHandler.UploadImageHandler).Methods("POST")

	// Uploaded images are served statically, by exact name only
	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", handlers.UploadsFileServer(cfg.UploadDir)))

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background housekeeping
	cronjobs.StartMaintenanceCronJobs(userRepo)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"titanfit/coach-app/internal/api"
	"titanfit/coach-app/internal/config"
	"titanfit/coach-app/internal/repository/mongo"
	"titanfit/coach-app/internal/service"
	"titanfit/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Coach App API
// @version 1.0
// @description API for coaches managing client plans, training programs, diets and schedules.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting Coach App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureDayIndexes(ctx, appDB.Collection("program_days"))
		mongo.EnsureColumnIndexes(ctx, appDB.Collection("program_columns"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("program_exercises"))
		mongo.EnsureCellIndexes(ctx, appDB.Collection("program_cells"))
		mongo.EnsureDietStructureIndexes(ctx, appDB.Collection("diet_structures"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureAttachmentIndexes(ctx, appDB.Collection("attachments"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	dayRepo := mongo.NewMongoDayRepository(appDB)
	columnRepo := mongo.NewMongoColumnRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	cellRepo := mongo.NewMongoCellRepository(appDB)
	dietRepo := mongo.NewMongoDietRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	attachmentRepo := mongo.NewMongoAttachmentRepository(appDB)
	txRunner := mongo.NewTxRunner(dbClient)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	rosterService := service.NewRosterService(userRepo)
	planService := service.NewPlanService(planRepo, dayRepo, columnRepo, exerciseRepo, cellRepo, dietRepo, txRunner)
	programService := service.NewProgramService(planRepo, dayRepo, columnRepo, exerciseRepo, cellRepo, txRunner)
	matrixService := service.NewMatrixService(planRepo, columnRepo, exerciseRepo, cellRepo)
	dietService := service.NewDietService(planRepo, dietRepo)
	sessionService := service.NewSessionService(sessionRepo, planRepo, dayRepo)
	scheduleService := service.NewScheduleService(sessionRepo, dayRepo, planRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, sessionRepo, fileStorage)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		rosterService,
		planService,
		programService,
		matrixService,
		dietService,
		sessionService,
		scheduleService,
		attachmentService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

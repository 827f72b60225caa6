package main

import (
	"aligner-lab/auth"
	"aligner-lab/internal/alignerset"
	"aligner-lab/internal/attachments"
	"aligner-lab/internal/batch"
	"aligner-lab/internal/config"
	"aligner-lab/internal/db"
	"aligner-lab/internal/middleware"
	"aligner-lab/internal/note"
	"aligner-lab/internal/payment"
	"aligner-lab/internal/registry"
	"aligner-lab/internal/staff"
	"aligner-lab/internal/worker"
	"aligner-lab/redis"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache()

	// Background workers for deferred attachment cleanup
	pool := worker.NewWorkerPool(4)
	defer pool.Shutdown()

	attachmentClient := attachments.NewClient(
		config.AppConfig.DocumentStoreAddress,
		config.AppConfig.DocumentStoreSecret,
	)

	// Initialize repositories
	staffRepo := staff.NewRepository(db.AppDb)
	registryRepo := registry.NewRepository(db.AppDb)
	setRepo := alignerset.NewRepository(db.AppDb)
	batchRepo := batch.NewRepository(db.AppDb)
	paymentRepo := payment.NewRepository(db.AppDb)
	noteRepo := note.NewRepository(db.AppDb)

	// Initialize services
	staffService := staff.NewService(staffRepo)
	registryService := registry.NewService(registryRepo)
	batchService := batch.NewService(batchRepo, setRepo, cache)
	paymentService := payment.NewService(paymentRepo, setRepo, cache)
	noteService := note.NewService(noteRepo, setRepo, cache)
	setService := alignerset.NewService(
		setRepo,
		registryService,
		batchService,
		paymentRepo,
		noteService,
		attachmentClient,
		cache,
		pool,
	)

	// Initialize handlers
	staffHandler := staff.NewHandler(staffService)
	registryHandler := registry.NewHandler(registryService)
	setHandler := alignerset.NewHandler(setService)
	batchHandler := batch.NewHandler(batchService)
	paymentHandler := payment.NewHandler(paymentService)
	noteHandler := note.NewHandler(noteService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// Staff account routes
	router.POST("/register", staffHandler.Register)
	router.POST("/login", staffHandler.Login)
	router.DELETE("/logout", auth.AuthMiddleWare(), staffHandler.Logout)
	router.GET("/profile", auth.AuthMiddleWare(), staffHandler.GetProfile)

	// Registry (read-only reference data)
	router.GET("/doctors", auth.AuthMiddleWare(), registryHandler.ListDoctors)
	router.GET("/doctors/:id", auth.AuthMiddleWare(), registryHandler.ShowDoctor)
	router.GET("/doctors/:id/patients", auth.AuthMiddleWare(), registryHandler.ListDoctorPatients)
	router.GET("/patients/:id", auth.AuthMiddleWare(), registryHandler.ShowPatient)
	router.GET("/patients/:id/works", auth.AuthMiddleWare(), registryHandler.ListPatientWorks)

	// Sets
	router.POST("/sets", auth.AuthMiddleWare(), setHandler.Create)
	router.GET("/works/:id/sets", auth.AuthMiddleWare(), setHandler.ListForWork)
	router.GET("/sets/:id", auth.AuthMiddleWare(), setHandler.Show)
	router.PUT("/sets/:id", auth.AuthMiddleWare(), setHandler.Update)
	router.DELETE("/sets/:id", auth.AuthMiddleWare(), setHandler.Delete)
	router.GET("/sets/:id/document", auth.AuthMiddleWare(), setHandler.ShowDocument)

	// Batches
	router.POST("/sets/:id/batches", auth.AuthMiddleWare(), batchHandler.Create)
	router.GET("/sets/:id/batches", auth.AuthMiddleWare(), batchHandler.ListForSet)
	router.PUT("/batches/:id", auth.AuthMiddleWare(), batchHandler.Update)
	router.POST("/batches/:id/deliver", auth.AuthMiddleWare(), batchHandler.MarkDelivered)
	router.DELETE("/batches/:id", auth.AuthMiddleWare(), batchHandler.Delete)

	// Payments
	router.POST("/sets/:id/payments", auth.AuthMiddleWare(), paymentHandler.Record)
	router.GET("/sets/:id/payments", auth.AuthMiddleWare(), paymentHandler.ShowLedger)

	// Notes + activity badges
	router.POST("/sets/:id/notes", auth.AuthMiddleWare(), noteHandler.Add)
	router.GET("/sets/:id/notes", auth.AuthMiddleWare(), noteHandler.ShowThread)
	router.POST("/sets/:id/notes/read-all", auth.AuthMiddleWare(), noteHandler.MarkThreadRead)
	router.GET("/sets/:id/notes/unread-count", auth.AuthMiddleWare(), noteHandler.UnreadCount)
	router.PUT("/notes/:id", auth.AuthMiddleWare(), noteHandler.Edit)
	router.POST("/notes/:id/read", auth.AuthMiddleWare(), noteHandler.ToggleRead)
	router.DELETE("/notes/:id", auth.AuthMiddleWare(), noteHandler.Delete)
	router.GET("/activity", auth.AuthMiddleWare(), noteHandler.ListActivity)
	router.POST("/activity/:id/read", auth.AuthMiddleWare(), noteHandler.MarkActivityRead)
	router.POST("/sets/:id/activity/read-all", auth.AuthMiddleWare(), noteHandler.MarkSetActivityRead)

	// internal use routes (called back by the document store)
	router.POST("/internal/sets/:id/document",
		auth.InternalAuthMiddleware(config.AppConfig.DocumentStoreSecret),
		setHandler.SetDocument)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}

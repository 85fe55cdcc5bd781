package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"texturelab/config"
	"texturelab/database"
	"texturelab/generator"
	"texturelab/handlers"
	"texturelab/media"
	"texturelab/prompts"
	"texturelab/realtime"
	"texturelab/repository"
	"texturelab/services"
	"texturelab/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	storagePaths := []string{cfg.TexturesPath, cfg.ThumbnailsPath, filepath.Dir(cfg.DatabasePath)}
	for _, p := range storagePaths {
		log.Printf("Ensuring storage directory exists: %s", p)
		if err := os.MkdirAll(p, 0755); err != nil {
			log.Fatalf("FATAL: Failed to create storage directory %s: %v", p, err)
		}
	}

	db, err := database.InitGormDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatalf("FATAL: Failed to migrate database schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("FATAL: Failed to access underlying sql.DB: %v", err)
	}
	defer sqlDB.Close()

	mediaSubDirs := map[media.AssetType]string{
		media.AssetTypeTexture:   filepath.Base(cfg.TexturesPath),
		media.AssetTypeThumbnail: filepath.Base(cfg.ThumbnailsPath),
	}
	mediaStore, err := media.NewLocalStorage(cfg.MediaStoragePath, mediaSubDirs)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize media store: %v", err)
	}

	themeRepo := repository.NewThemeRepository(db)
	generationRepo := repository.NewGenerationRepository(db)
	imageRepo := repository.NewImageRepository(db)
	keywordRepo := repository.NewKeywordRepository(db)

	categoryTable, err := prompts.LoadCategoryTable(cfg.CategoryTablePath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load keyword category table: %v", err)
	}
	variationEngine := prompts.NewVariationEngine(categoryTable, cfg.MinVariations, cfg.MaxVariations)
	structurePrompt := prompts.LoadStructurePrompt(cfg.StructurePromptPath)

	if cfg.OpenAIAPIKey == "" {
		log.Printf("Warning: OPENAI_API_KEY is not set; generation requests will fail")
	}
	imageGen := generator.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.GenerationTimeout)

	log.Printf("Initializing thumbnail worker pool (Workers: %d, Queue Size: %d)...", cfg.NumThumbnailWorkers, cfg.ThumbnailQueueSize)
	thumbGen := workers.NewThumbnailGenerator(cfg, imageRepo, cfg.ThumbnailQueueSize, cfg.NumThumbnailWorkers)
	defer thumbGen.Stop()

	hub := realtime.NewHub()
	go hub.Run()

	themeService := services.NewThemeService(themeRepo)
	analyticsService := services.NewAnalyticsService(cfg, sqlDB, themeRepo)
	generationService := &services.GenerationService{
		Cfg:         cfg,
		Themes:      themeRepo,
		Generations: generationRepo,
		Images:      imageRepo,
		Keywords:    keywordRepo,
		Generator:   imageGen,
		Store:       mediaStore,
		Engine:      variationEngine,
		Table:       categoryTable,
		Structure:   structurePrompt,
		Thumbs:      thumbGen,
		Hub:         hub,
	}

	log.Printf("Using database: %s", cfg.DatabasePath)
	log.Printf("Storing textures in: %s", cfg.TexturesPath)
	log.Printf("Storing thumbnails in: %s", cfg.ThumbnailsPath)
	log.Printf("Image model: %s (timeout %s)", cfg.OpenAIModel, cfg.GenerationTimeout)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// generation requests fan out to a paid external API and may run for
	// minutes; the request timeout has to outlive the per-call timeout
	r.Use(middleware.Timeout(cfg.GenerationTimeout + 30*time.Second))
	r.Use(corsHandler.Handler)

	themeHandler := &handlers.ThemeHandler{
		Themes:      themeService,
		Analytics:   analyticsService,
		Images:      imageRepo,
		Generations: generationRepo,
	}
	generationHandler := &handlers.GenerationHandler{Generations: generationService}
	imageHandler := &handlers.ImageHandler{Images: imageRepo, Generations: generationService}
	analyticsHandler := &handlers.AnalyticsHandler{Analytics: analyticsService, Keywords: keywordRepo}

	r.Route("/api", func(r chi.Router) {
		r.Route("/themes", func(r chi.Router) {
			r.Post("/", themeHandler.CreateTheme)
			r.Get("/", themeHandler.ListThemes)
			r.Route("/{theme_id}", func(r chi.Router) {
				r.Get("/", themeHandler.GetTheme)
				r.Put("/", themeHandler.UpdateTheme)
				r.Delete("/", themeHandler.DeleteTheme)
				r.Post("/branch", themeHandler.BranchTheme)
				r.Get("/lineage", themeHandler.GetLineage)
				r.Get("/stats", themeHandler.GetThemeStats)
				r.Get("/images", themeHandler.ListThemeImages)
				r.Get("/images/top", themeHandler.ListTopRatedImages)
				r.Get("/generations", themeHandler.ListThemeGenerations)
			})
		})

		r.Post("/generate", generationHandler.Generate)
		r.Get("/generations/{generation_id}", generationHandler.GetGeneration)

		r.Route("/images", func(r chi.Router) {
			r.Get("/recent", imageHandler.ListRecentImages)
			r.Route("/{image_id}", func(r chi.Router) {
				r.Get("/", imageHandler.GetImage)
				r.Put("/rating", imageHandler.RateImage)
			})
		})

		r.Get("/keywords", analyticsHandler.ListKeywords)
		r.Route("/analytics", func(r chi.Router) {
			r.Get("/keywords", analyticsHandler.GetKeywordStats)
			r.Get("/summary", analyticsHandler.GetSummary)
		})

		r.Get("/ws", hub.ServeWS)

		texturesSubDir := filepath.Base(cfg.TexturesPath)
		r.Get(fmt.Sprintf("/%s/*", texturesSubDir), handlers.AssetServer(mediaStore, texturesSubDir, fmt.Sprintf("/api/%s/", texturesSubDir)))
		log.Printf("Registered texture server at /api/%s/*", texturesSubDir)

		thumbnailSubDir := filepath.Base(cfg.ThumbnailsPath)
		r.Get(fmt.Sprintf("/%s/*", thumbnailSubDir), handlers.AssetServer(mediaStore, thumbnailSubDir, fmt.Sprintf("/api/%s/", thumbnailSubDir)))
		log.Printf("Registered thumbnail server at /api/%s/*", thumbnailSubDir)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

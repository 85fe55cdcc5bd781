package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultTexturesSubDir   = "textures"
	DefaultThumbnailsSubDir = "thumbnails"
)

const (
	defaultThumbnailQueueSize  = 100
	defaultNumThumbnailWorkers = 2
	defaultThumbnailMaxSize    = 300

	defaultMinVariations = 1
	defaultMaxVariations = 6

	defaultHighRatingThreshold = 4

	defaultMediumConfidenceUses = 3
	defaultHighConfidenceUses   = 10

	defaultGenerationTimeoutSec = 120
	defaultOpenAIModel          = "dall-e-3"
	defaultOpenAIBaseURL        = "https://api.openai.com/v1"
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored assets (textures, thumbs)
	TexturesPath     string // full-calculated path for generated textures
	ThumbnailsPath   string // full-calculated path for thumbnails

	// OpenAI image generation settings
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	GenerationTimeout time.Duration

	// prompt variation bounds
	MinVariations int
	MaxVariations int

	// optional data files overriding built-in prompt tables
	StructurePromptPath string
	CategoryTablePath   string

	// analytics settings
	HighRatingThreshold  int
	MediumConfidenceUses int
	HighConfidenceUses   int

	// thumbnail generation settings
	ThumbnailMaxSize int

	// worker settings
	ThumbnailQueueSize  int
	NumThumbnailWorkers int

	// frontend origin allowed by CORS
	AllowedOrigin string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "textures.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	texturesSubDir := getEnvOrDefault("TEXTURES_SUBDIR", DefaultTexturesSubDir)
	absTexturesPath := filepath.Join(absMediaStorage, texturesSubDir)

	thumbSubDir := getEnvOrDefault("THUMBNAILS_SUBDIR", DefaultThumbnailsSubDir)
	absThumbnailsPath := filepath.Join(absMediaStorage, thumbSubDir)

	minVariations := getEnvIntOrDefault("MIN_VARIATIONS", defaultMinVariations)
	maxVariations := getEnvIntOrDefault("MAX_VARIATIONS", defaultMaxVariations)
	if minVariations > maxVariations {
		return Config{}, fmt.Errorf("MIN_VARIATIONS (%d) cannot exceed MAX_VARIATIONS (%d)", minVariations, maxVariations)
	}

	timeoutSec := getEnvIntOrDefault("GENERATION_TIMEOUT_SECONDS", defaultGenerationTimeoutSec)

	cfg := Config{
		DatabasePath:         dbPath,
		MediaStoragePath:     absMediaStorage,
		TexturesPath:         absTexturesPath,
		ThumbnailsPath:       absThumbnailsPath,
		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          getEnvOrDefault("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBaseURL:        getEnvOrDefault("OPENAI_BASE_URL", defaultOpenAIBaseURL),
		GenerationTimeout:    time.Duration(timeoutSec) * time.Second,
		MinVariations:        minVariations,
		MaxVariations:        maxVariations,
		StructurePromptPath:  os.Getenv("STRUCTURE_PROMPT_PATH"),
		CategoryTablePath:    os.Getenv("CATEGORY_TABLE_PATH"),
		HighRatingThreshold:  getEnvIntOrDefault("HIGH_RATING_THRESHOLD", defaultHighRatingThreshold),
		MediumConfidenceUses: getEnvIntOrDefault("MEDIUM_CONFIDENCE_USES", defaultMediumConfidenceUses),
		HighConfidenceUses:   getEnvIntOrDefault("HIGH_CONFIDENCE_USES", defaultHighConfidenceUses),
		ThumbnailMaxSize:     getEnvIntOrDefault("THUMBNAIL_MAX_SIZE", defaultThumbnailMaxSize),
		ThumbnailQueueSize:   getEnvIntOrDefault("THUMBNAIL_QUEUE_SIZE", defaultThumbnailQueueSize),
		NumThumbnailWorkers:  getEnvIntOrDefault("NUM_THUMBNAIL_WORKERS", defaultNumThumbnailWorkers),
		AllowedOrigin:        getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:5173"),
	}

	return cfg, nil
}

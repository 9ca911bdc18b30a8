package bootstrap

import (
	"context"
	"strings"

	"quickmail_server/adapter/in/http"
	"quickmail_server/config"
	"quickmail_server/infra/middleware"
	"quickmail_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Version is the API version reported by /health.
const Version = "1.0.0"

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	// Initialize logger
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() || cfg.DebugMode {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "quickmail-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		Prefork:               false,
		StrictRouting:         false,
		CaseSensitive:         false,

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is faster than encoding/json for these payloads
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Body limit covers the attachment size cap plus form overhead
		BodyLimit: 12 * 1024 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}))

	// Health check
	mongoPing := func(ctx context.Context) error {
		return deps.MongoDB.Ping(ctx, nil)
	}
	healthHandler := http.NewHealthHandler(mongoPing, deps.ResultCache, cfg.OpenAIAPIKey != "", Version)
	healthHandler.Register(app)

	// Analysis routes
	analysisHandler := http.NewAnalysisHandler(deps.AnalysisService, deps.AnalysisRepo, cfg.DebugMode)
	analysisHandler.Register(app)

	logger.Info("API server initialized successfully")

	return app, cleanup, nil
}

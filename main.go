package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"academy_go/config"
	"academy_go/database"
	"academy_go/database/seeders"
	"academy_go/middleware"
	"academy_go/routes"
	"academy_go/services"
	"academy_go/services/mail"
	"academy_go/services/websocket"
	"academy_go/storage"
	"academy_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

const appName = "Academy API"

func init() {
	// Load configuration
	config.LoadConfig()

	// Initialize logging
	setupLogging()

	// Connect to database
	database.Connect()
}

func main() {
	cfg := config.AppConfig

	wsHub := websocket.NewHub()
	go wsHub.Run()

	store := database.NewRegistry(database.DB)
	hasher := utils.BcryptHasher{}

	var denylist services.Denylist = services.NewMemoryDenylist()
	if rdb := database.GetRedisClient(); rdb != nil && cfg.UseRedisDenylist {
		denylist = services.NewRedisDenylist(rdb)
		logrus.Info("Session revocation backed by Redis")
	}

	objects := buildObjectStore(cfg)
	mailer := mail.New(cfg.SendGridAPIKey, appName, cfg.MailFrom)
	rules := services.UploadRules{MaxSize: cfg.MaxFileSize, Extensions: cfg.AllowedExtensionList()}

	sessions := services.NewSessionService(store, hasher, services.SessionOptions{
		Secret:   cfg.JWTSecret,
		TTL:      cfg.JWTExpiresIn,
		Issuer:   cfg.JWTIssuer,
		Denylist: denylist,
	})
	admins := services.NewAdminService(store, hasher)
	registrations := services.NewRegistrationService(store, wsHub)

	seeders.SeedSuperadmin(admins, cfg.SuperadminEmail, cfg.SuperadminPassword)

	digest, err := services.StartDigestSchedule(cfg.DigestCron, services.NewDigestJob(store, mailer, cfg.AdminInbox))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start registration digest")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(cfg.MaxFileSize) + 1<<20,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID",
	}))
	app.Use(middleware.LoggerMiddleware())

	routes.SetupRoutes(app, routes.Deps{
		DB:            database.DB,
		Sessions:      sessions,
		Admins:        admins,
		Grades:        services.NewGradeService(store),
		Groups:        services.NewGroupService(store),
		Teachers:      services.NewTeacherService(store, hasher, objects, rules),
		Students:      services.NewStudentService(store),
		Registrations: registrations,
		Health:        services.NewHealthService(database.DB, database.GetRedisClient(), cfg.AppEnv),
		Objects:       objects,
		UploadRules:   rules,
		Mailer:        mailer,
		Hub:           wsHub,
		AdminInbox:    cfg.AdminInbox,
	})

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	go func() {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.AppEnv}).Info("Server starting")
		if err := app.Listen(addr); err != nil {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down")
	<-digest.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
	database.Close()
}

// buildObjectStore uses S3 when a bucket is configured and falls back to
// process memory otherwise.
func buildObjectStore(cfg *config.Config) storage.ObjectStore {
	if cfg.S3BucketName == "" || cfg.AWSRegion == "" {
		logrus.Warn("S3 not configured, uploads are kept in memory")
		return storage.NewMemoryStore()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s3, err := storage.NewStorageService(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 unavailable, uploads are kept in memory")
		return storage.NewMemoryStore()
	}
	return s3
}

// setupLogging configures the logging system
func setupLogging() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Log to stdout in development, to file otherwise
	if config.AppConfig.AppEnv == "development" || config.AppConfig.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return
	}
	if err := os.MkdirAll(filepath.Dir(config.AppConfig.LogFile), 0755); err != nil {
		logrus.WithError(err).Warn("Could not create logs directory")
	}
	file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err == nil {
		logrus.SetOutput(file)
	}
}

// customErrorHandler handles errors that escape the controllers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}

package main

import (
	"os"

	"wiper-backend/calendar"
	"wiper-backend/conn"
	"wiper-backend/login"
	"wiper-backend/marketing"
	"wiper-backend/migrations"
	"wiper-backend/plans"
	"wiper-backend/profile"
	"wiper-backend/register"
	"wiper-backend/reports"
	"wiper-backend/session"
	"wiper-backend/support"
	"wiper-backend/updates"
	"wiper-backend/vehicles"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment as-is")
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if os.Getenv("LOG_LEVEL") == "debug" {
		log.SetLevel(log.DebugLevel)
	}

	db, err := conn.NewMySQL()
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}
	if err := migrations.SeedSampleUpdates(); err != nil {
		log.WithError(err).Warn("seeding sample updates failed")
	}

	sessions := session.NewService()
	entitlements := plans.NewRepository(db)
	vehicleRepo := vehicles.NewRepository(db)
	updateRepo := updates.NewRepository(db)
	stripeSvc := plans.NewStripeFromEnv()

	marketing.NewService(db).Start()

	r := gin.Default()

	// Public surface: auth, registration and the stateless calendar.
	login.NewHandler(sessions).RegisterRoutes(r)
	register.NewHandler(sessions).RegisterRoutes(r)
	calendar.NewHandler().RegisterRoutes(r)

	authed := r.Group("/", sessions.Required())
	vehicles.NewHandler(vehicleRepo).RegisterRoutes(authed)
	plans.NewHandler(entitlements, vehicleRepo, stripeSvc).RegisterRoutes(r, authed)
	updates.NewHandler(updateRepo, entitlements).RegisterRoutes(authed)
	reports.NewHandler(updateRepo, entitlements).RegisterRoutes(authed)
	profile.NewHandler(entitlements, vehicleRepo, updateRepo).RegisterRoutes(authed)
	support.NewHandler(support.NewAssistantFromEnv()).RegisterRoutes(authed)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

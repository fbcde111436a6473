package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hospital-admin-api/audit"
	"hospital-admin-api/config"
	"hospital-admin-api/controllers"
	"hospital-admin-api/database"
	"hospital-admin-api/routes"
	"hospital-admin-api/utils"
)

func main() {
	logger := logrus.New()
	logger.Out = os.Stdout
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	env, err := config.LoadEnv()
	if err != nil {
		logger.Fatal("Error loading configuration: ", err)
	}

	pgClient, err := database.NewPostgresClient(env.DBHost, env.DBUser, env.DBPassword, env.DBName, env.DBPort)
	if err != nil {
		logger.Fatal("Error connecting to database: ", err)
	}
	if err := database.Migrate(pgClient); err != nil {
		logger.Fatal("Error migrating database: ", err)
	}

	redisClient, err := database.GetRedisClient(env.RedisAddr, env.RedisPass, env.RedisDB)
	if err != nil {
		logger.Fatal("Error connecting to redis: ", err)
	}

	cipher, err := utils.NewFieldCipher(env.EncryptionKey)
	if err != nil {
		logger.Fatal("Error initializing field encryption: ", err)
	}

	auditLogger := audit.NewLogger(pgClient, logger)

	ctrl := routes.Controllers{
		Auth:         controllers.NewAuthController(pgClient, redisClient, auditLogger, logger, env),
		Users:        controllers.NewUserController(pgClient, auditLogger),
		Patients:     controllers.NewPatientController(pgClient, cipher, auditLogger, logger),
		Appointments: controllers.NewAppointmentController(pgClient, auditLogger),
		Medications:  controllers.NewMedicationController(pgClient, auditLogger),
		Dashboard:    controllers.NewDashboardController(pgClient, auditLogger),
		Audit:        controllers.NewAuditController(auditLogger),
	}

	r := gin.Default()
	routes.SetupRoutes(r, ctrl)

	if err := r.Run(":" + env.Port); err != nil {
		logger.Fatal("Failed to start server: ", err)
	}
}

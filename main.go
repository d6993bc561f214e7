package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinicapp/clinic-backend/config"
	accountControllers "github.com/clinicapp/clinic-backend/internal/account/controllers"
	accountRepositories "github.com/clinicapp/clinic-backend/internal/account/repositories"
	accountRoutes "github.com/clinicapp/clinic-backend/internal/account/routes"
	accountServices "github.com/clinicapp/clinic-backend/internal/account/services"
	"github.com/clinicapp/clinic-backend/internal/common/middlewares"
	consultationControllers "github.com/clinicapp/clinic-backend/internal/consultation/controllers"
	consultationRepositories "github.com/clinicapp/clinic-backend/internal/consultation/repositories"
	consultationRoutes "github.com/clinicapp/clinic-backend/internal/consultation/routes"
	consultationServices "github.com/clinicapp/clinic-backend/internal/consultation/services"
	"github.com/clinicapp/clinic-backend/internal/gateway"
	patientControllers "github.com/clinicapp/clinic-backend/internal/patient/controllers"
	patientRepositories "github.com/clinicapp/clinic-backend/internal/patient/repositories"
	patientRoutes "github.com/clinicapp/clinic-backend/internal/patient/routes"
	patientServices "github.com/clinicapp/clinic-backend/internal/patient/services"
	queueControllers "github.com/clinicapp/clinic-backend/internal/queue/controllers"
	queueRepositories "github.com/clinicapp/clinic-backend/internal/queue/repositories"
	queueRoutes "github.com/clinicapp/clinic-backend/internal/queue/routes"
	queueServices "github.com/clinicapp/clinic-backend/internal/queue/services"
	"github.com/clinicapp/clinic-backend/pkg/storage/mariadb"
	"github.com/clinicapp/clinic-backend/ws"
)

func main() {
	cfg := config.LoadConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	db := mariadb.Connect()

	accountService := accountServices.NewAccountService(accountRepositories.NewMariaDBRepository(db))

	// "create-user" seeds a staff account and exits, e.g.
	//   clinic-backend create-user -name Doctor -email doctor@example.com -password secret123 -role doctor
	if len(os.Args) > 1 && os.Args[1] == "create-user" {
		createUser(logger, accountService)
		return
	}

	groq := gateway.NewClient(cfg.GroqBaseURL, cfg.GroqAPIKey)

	queueService := queueServices.NewQueueService(queueRepositories.NewMariaDBRepository(db), ws.HubInstance)
	consultationService := consultationServices.NewConsultationService(consultationRepositories.NewMariaDBRepository(db), groq)
	voiceService := consultationServices.NewVoiceService(groq, consultationService, cfg.AudioDir, logger)
	patientService := patientServices.NewPatientService(patientRepositories.NewMariaDBRepository(db))

	queueController := queueControllers.NewQueueController(queueService)
	consultationController := consultationControllers.NewConsultationController(consultationService)
	voiceController := consultationControllers.NewVoiceController(voiceService)
	patientController := patientControllers.NewPatientController(patientService)
	authController := accountControllers.NewAuthController(accountService)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middlewares.Logger(logger))

	accountRoutes.RegisterAccountRoutes(e, authController)
	queueRoutes.RegisterQueueRoutes(e, queueController)
	consultationRoutes.RegisterConsultationRoutes(e, consultationController, voiceController)
	patientRoutes.RegisterPatientRoutes(e, patientController)
	e.GET("/ws/queue", ws.ServeWS(ws.HubInstance))

	logger.Info().Str("port", cfg.Port).Msg("server listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func createUser(logger zerolog.Logger, accounts *accountServices.AccountService) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password (min 8 characters)")
	role := fs.String("role", "doctor", "role name")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := accounts.CreateUser(ctx, *name, *email, *password, *role)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user")
	}
	logger.Info().Int64("id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("user created")
}

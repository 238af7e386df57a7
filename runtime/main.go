package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lac-hong-legacy/authguard/services"
)

// @title AuthGuard API
// @version 1.0
// @description JWT authentication service with multi-tier rate limiting
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using system environment variables")
	}

	svcs := []context.Service{
		&services.RedisService{},
		&services.GeolocationService{},
		&services.EmailService{},
		&services.JWTService{},
		&services.UserService{},
		&services.SessionService{},
		&services.LoginGuardService{},
		&services.RateLimitService{},
		&services.AuthService{},
		&services.MessageService{},
		&services.ArchiveService{},
		&services.CleanupService{},
		&services.MonitoringService{},
		&services.HttpService{},
	}

	if os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != "" {
		svcs = append([]context.Service{&services.PostgresService{}}, svcs...)
	} else {
		svcs = append([]context.Service{&services.SqliteService{}}, svcs...)
	}

	ctx, err := context.NewCtx(svcs...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build service context")
		return
	}

	if err := ctx.Run(); err != nil {
		log.Fatal().Err(err).Msg("service context exited")
		return
	}
}

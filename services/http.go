package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/gofiber/swagger"

	docs "github.com/lac-hong-legacy/authguard/docs"
	"github.com/lac-hong-legacy/authguard/middleware"
	"github.com/lac-hong-legacy/authguard/services/handlers"
	"github.com/lac-hong-legacy/authguard/shared"
)

type HttpService struct {
	context.DefaultService

	jwtSvc       *JWTService
	authSvc      *AuthService
	userSvc      *UserService
	rateLimitSvc *RateLimitService
	guardSvc     *LoginGuardService
	messageSvc   *MessageService
	archiveSvc   *ArchiveService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.userSvc = svc.Service(USER_SVC).(*UserService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.guardSvc = svc.Service(LOGIN_GUARD_SVC).(*LoginGuardService)
	svc.messageSvc = svc.Service(MESSAGE_SVC).(*MessageService)
	svc.archiveSvc = svc.Service(ARCHIVE_SVC).(*ArchiveService)

	app := fiber.New(fiber.Config{
		AppName:      "authguard",
		ErrorHandler: svc.handleError,
	})
	docs.SwaggerInfo.BasePath = ""

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if monSvc, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		app.Use(MonitoringMiddleware(monSvc))
	}
	app.Use(middleware.RateLimit(svc.rateLimitSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	authHandler := handlers.NewAuthHandler(svc.authSvc, svc.userSvc)
	adminHandler := handlers.NewAdminHandler(svc.rateLimitSvc, svc.guardSvc, svc.messageSvc, svc.archiveSvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Post("/signup", authHandler.Signup)
	v1.Post("/login", authHandler.Login)
	v1.Post("/refresh", authHandler.Refresh)
	v1.Get("/check-id", authHandler.CheckID)

	authed := v1.Group("", middleware.RequiredAuth(svc.jwtSvc))
	authed.Post("/logout", authHandler.Logout)
	authed.Get("/me", authHandler.Me)

	admin := v1.Group("/admin", middleware.RequiredAuth(svc.jwtSvc), middleware.RequireRole(shared.RoleAdmin))
	admin.Get("/rate-limits/:identity", adminHandler.GetRateLimitStats)
	admin.Delete("/rate-limits/:identity", adminHandler.ClearRateLimits)
	admin.Delete("/rate-limits", adminHandler.ClearAllRateLimits)
	admin.Delete("/ip-blocks/:ip", adminHandler.UnblockIP)
	admin.Put("/messages/:code", adminHandler.SetMessage)
	admin.Get("/archives", adminHandler.ListArchives)
	admin.Get("/archives/url", adminHandler.GetArchiveURL)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		message := appErr.Message
		// Operators can override the canned text per reason code.
		if svc.messageSvc != nil {
			if resolved := svc.messageSvc.Resolve(c.UserContext(), appErr.Code); resolved != appErr.Code {
				message = resolved
			}
		}
		return shared.ResponseJSON(c, appErr.StatusCode, message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}

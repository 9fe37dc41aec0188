package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/seldo/newww/internal/core/ports"
	customMiddleware "github.com/seldo/newww/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

type ServerDeps struct {
	Signup             ports.SignupCoordinator
	Confirmation       ports.ConfirmationConsumer
	Sessions           ports.SessionService
	RateLimiterService ports.RateLimiterService
	Validator          echo.Validator
	HealthCheckers     []ports.HealthChecker
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	signup         ports.SignupCoordinator
	confirmation   ports.ConfirmationConsumer
	sessions       ports.SessionService
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	if deps.Validator != nil {
		e.Validator = deps.Validator
	}

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		signup:         deps.Signup,
		confirmation:   deps.Confirmation,
		sessions:       deps.Sessions,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			deps.Sessions,
			deps.RateLimiterService,
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

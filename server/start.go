package server

import (
	"liist/cache"
	"liist/config"
	"liist/database"
	"liist/handlers"
	"liist/repository"
	"liist/security"
	"liist/services"
	"liist/session"
	"os"

	"github.com/jmoiron/sqlx"
	goutilscache "github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/httpserver"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitLogger sets up the process-wide go-utils logger.
func InitLogger() {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
}

// App holds the request handlers built from one configuration.
type App struct {
	Auth   *handlers.AuthHandler
	Lists  *handlers.ListHandler
	Health httpserver.HandlerFunc
}

// NewApp wires repositories, sessions and services into handlers.
func NewApp(cfg *config.Config, dbConn *sqlx.DB, sessionCache goutilscache.Cache) (*App, error) {
	pages, err := handlers.NewPages([]byte(cfg.SecretKey), cfg.CookieSecure)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(sessionCache, cfg.SessionIdleTimeout)
	auth := services.NewAuthService(
		repository.NewUserRepository(dbConn),
		security.NewBcryptHasher(cfg.BcryptCost),
		sessions,
	)
	lists := services.NewListService(repository.NewItemRepository(dbConn))

	return &App{
		Auth: handlers.NewAuthHandler(auth, pages, handlers.CookieConfig{
			Secure: cfg.CookieSecure,
			MaxAge: sessions.IdleTimeout(),
		}),
		Lists:  handlers.NewListHandler(lists, pages),
		Health: handlers.Health(dbConn),
	}, nil
}

// Routes lists every route with its handler. Protected pages do their own
// session check so that they can redirect to /login instead of answering 401.
func (a *App) Routes() []Route {
	guard := a.Auth.RequireSession
	return []Route{
		{httpserver.Route{Name: "HealthCheck", Method: "GET", Path: "/health", AuthType: "none"}, a.Health},

		{httpserver.Route{Name: "ListItems", Method: "GET", Path: "/", AuthType: "none"}, guard(a.Lists.Index)},
		{httpserver.Route{Name: "AddItem", Method: "POST", Path: "/", AuthType: "none"}, guard(a.Lists.Add)},
		{httpserver.Route{Name: "DeleteItem", Method: "GET", Path: "/delete/{id:[0-9]+}", AuthType: "none"}, guard(a.Lists.Delete)},
		{httpserver.Route{Name: "EditItem", Method: "GET", Path: "/update/{id:[0-9]+}", AuthType: "none"}, guard(a.Lists.ShowUpdate)},
		{httpserver.Route{Name: "UpdateItem", Method: "POST", Path: "/update/{id:[0-9]+}", AuthType: "none"}, guard(a.Lists.Update)},

		{httpserver.Route{Name: "LoginForm", Method: "GET", Path: "/login", AuthType: "none"}, a.Auth.ShowLogin},
		{httpserver.Route{Name: "Login", Method: "POST", Path: "/login", AuthType: "none"}, a.Auth.Login},
		{httpserver.Route{Name: "RegisterForm", Method: "GET", Path: "/register", AuthType: "none"}, a.Auth.ShowRegister},
		{httpserver.Route{Name: "Register", Method: "POST", Path: "/register", AuthType: "none"}, a.Auth.Register},
		{httpserver.Route{Name: "Logout", Method: "GET", Path: "/logout", AuthType: "none"}, guard(a.Auth.Logout)},
	}
}

// Route pairs an httpserver route with its handler.
type Route struct {
	Spec    httpserver.Route
	Handler httpserver.HandlerFunc
}

func StartServer(cfg *config.Config) {
	InitLogger()

	logger.Info("Starting liist...")
	for _, warning := range cfg.Warnings() {
		logger.Error("Unsafe configuration", zap.String("warning", warning))
	}

	dbConn := database.InitializeDatabase(cfg)
	defer dbConn.Close()

	sessionCache := cache.InitializeCache(cfg)
	defer sessionCache.Close()

	app, err := NewApp(cfg, dbConn, sessionCache)
	if err != nil {
		logger.Error("Failed to build handlers", zap.Error(err))
		os.Exit(1)
	}

	// no auth callback: every route is "none" and guards itself
	server := httpserver.New(cfg.Port, nil)
	for _, route := range app.Routes() {
		server.Register(route.Spec, route.Handler)
	}

	logger.Info("liist started", zap.String("port", cfg.Port))
	logger.Info("Health check: GET /health")

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", zap.Error(err))
		os.Exit(1)
	}
}

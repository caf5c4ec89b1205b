package server

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/orderdesk/app/repositories"
	"github.com/shashiranjanraj/orderdesk/app/routes"
	"github.com/shashiranjanraj/orderdesk/config"
	"github.com/shashiranjanraj/orderdesk/pkg/cache"
	"github.com/shashiranjanraj/orderdesk/pkg/jsonstore"
	"github.com/shashiranjanraj/orderdesk/pkg/logger"
	"github.com/shashiranjanraj/orderdesk/pkg/metrics"
	"github.com/shashiranjanraj/orderdesk/pkg/middleware"
	"github.com/shashiranjanraj/orderdesk/pkg/reqid"
	"github.com/shashiranjanraj/orderdesk/pkg/router"
	"github.com/shashiranjanraj/orderdesk/pkg/session"
	"github.com/shashiranjanraj/orderdesk/pkg/storage"
)

// Boot loads config, connects the backing services, and seeds the admin
// account. Shared by the serve and seed commands.
func Boot() error {
	if err := config.Load(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		logger.Warn("cache unavailable, using in-memory sessions", "error", err)
	}
	storage.Connect()

	if err := jsonstore.Connect(config.DataDir()); err != nil {
		return err
	}

	return repositories.NewUserRepository().EnsureAdmin()
}

// NewRouter builds the full middleware stack and mounts every route.
func NewRouter() *router.Router {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(middleware.RateLimit(300, time.Minute))

	sessOpts := session.DefaultOptions()
	sessOpts.TTL = config.SessionTTL()
	r.Use(session.Middleware(sessOpts))
	r.Use(middleware.Identity)

	routes.Register(r)
	return r
}

// Start boots the application and serves HTTP until the listener fails.
func Start() error {
	if err := Boot(); err != nil {
		return err
	}

	r := NewRouter()

	addr := ":" + config.AppPort()
	logger.Info("orderdesk listening", "addr", addr, "env", config.AppEnv())
	return http.ListenAndServe(addr, r.Handler())
}

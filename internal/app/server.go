package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"research-hub/internal/common/logging"
	"research-hub/internal/handlers"
	"research-hub/internal/server"
)

// Handler builds the routed HTTP handler
func (app *App) Handler() http.Handler {
	var redisHealth handlers.HealthChecker
	if app.RedisClient != nil {
		redisHealth = app.RedisClient
	}

	h := handlers.New(app.Storage, app.Auth, app.Limiter, redisHealth, logging.GetGlobalLogger())

	router := mux.NewRouter()
	SetupRoutes(router, h, app.Limiter, logging.GetGlobalLogger())
	return router
}

// RunServer starts background work and returns the HTTP server
func (app *App) RunServer() (*server.Server, error) {
	if err := app.Limiter.Start(); err != nil {
		return nil, err
	}

	return server.New(app.Handler(), app.Config.Port, app.Logger), nil
}

package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zapzatron/ToDo-List-API/internal/api"
	apiMiddleware "github.com/Zapzatron/ToDo-List-API/internal/api/middleware"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/metrics"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	if app.metrics != nil {
		r.Use(app.metrics.Middleware)
	}

	authHandler := api.NewAuthHandler(app.userService, app.tokenService, app.logger)
	taskHandler := api.NewTaskHandler(app.accessService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.accessService, app.logger)

	taskPath := "/{" + api.TaskIDParam + "}"

	r.Route("/users", func(r chi.Router) {
		r.Post("/create", authHandler.Register)
		r.Post("/get_token", authHandler.GetToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/check_token_auth", authHandler.CheckTokenAuth)
			r.Get("/check_token_auth", authHandler.CheckTokenAuth)
		})
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/check_auth", authHandler.CheckAuth)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/create", taskHandler.CreateTask)
			r.Post("/read"+taskPath, taskHandler.ReadTask)
			r.Post("/read_tasks", taskHandler.ReadTasks)
			r.Post("/update"+taskPath, taskHandler.UpdateTask)
			r.Post("/delete"+taskPath, taskHandler.DeleteTask)
			r.Post("/update_permissions"+taskPath, taskHandler.UpdatePermissions)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	if app.metrics != nil {
		r.Method(http.MethodGet, metrics.Path(app.config.Metrics), app.metrics.Handler())
	}

	return r
}

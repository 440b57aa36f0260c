package routes

import (
	"net/http"
	"time"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/handler"
	"github.com/templui/folio/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	goal := handler.NewGoalHandler(app.Store)
	step := handler.NewStepHandler(app.Store)
	project := handler.NewProjectHandler(app.Store, app.Markdown)
	certificate := handler.NewCertificateHandler(app.Store)
	sess := handler.NewSessionHandler(app, app.Store)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handler.Health)

	// Session (rate limited sign-in)
	rateLimit := middleware.RateLimit(middleware.NewRateLimiter(5, 15*time.Minute))
	mux.HandleFunc("GET /app/session", sess.Show)
	mux.HandleFunc("POST /app/session", rateLimit(sess.Login))
	mux.HandleFunc("DELETE /app/session", sess.Logout)

	// Goals
	mux.HandleFunc("GET /app/goals", goal.List)
	mux.HandleFunc("POST /app/goals", goal.Create)
	mux.HandleFunc("GET /app/goals/{id}", goal.Show)
	mux.HandleFunc("PATCH /app/goals/{id}", goal.Update)
	mux.HandleFunc("DELETE /app/goals/{id}", goal.Delete)

	// Steps
	mux.HandleFunc("POST /app/goals/{id}/steps", step.Add)
	mux.HandleFunc("PATCH /app/goals/{id}/steps/{step}", step.Rename)
	mux.HandleFunc("POST /app/goals/{id}/steps/{step}/toggle", step.Toggle)
	mux.HandleFunc("POST /app/goals/{id}/steps/{step}/move", step.Move)
	mux.HandleFunc("DELETE /app/goals/{id}/steps/{step}", step.Delete)

	// Projects
	mux.HandleFunc("GET /app/projects", project.List)
	mux.HandleFunc("POST /app/projects", project.Create)
	mux.HandleFunc("POST /app/projects/describe", project.Describe)
	mux.HandleFunc("GET /app/projects/{id}", project.Show)
	mux.HandleFunc("PUT /app/projects/{id}", project.Update)
	mux.HandleFunc("DELETE /app/projects/{id}", project.Delete)

	// Certificates
	mux.HandleFunc("GET /app/certificates", certificate.List)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID, // before logging so the id is in the log line
		middleware.Config(app.Cfg),
		middleware.RequestLogging,
	)
}

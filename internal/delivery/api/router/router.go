// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"quizdash/internal/delivery/api/middleware"
	"quizdash/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	HealthHandler     *handler.HealthHandler
	SessionHandler    *handler.SessionHandler
	StreakHandler     *handler.StreakHandler
	ProgressHandler   *handler.ProgressHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	healthHandler     *handler.HealthHandler
	sessionHandler    *handler.SessionHandler
	streakHandler     *handler.StreakHandler
	progressHandler   *handler.ProgressHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		healthHandler:     params.HealthHandler,
		sessionHandler:    params.SessionHandler,
		streakHandler:     params.StreakHandler,
		progressHandler:   params.ProgressHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.healthHandler.HealthCheck)

	// Opening a session is the only unauthenticated call
	e.POST("/sessions", r.sessionHandler.OpenSession)

	authenticate := r.sessionMiddleware.Authenticate

	sessionGroup := e.Group("/session", authenticate)
	{
		sessionGroup.GET("", r.sessionHandler.GetSession)
		sessionGroup.DELETE("", r.sessionHandler.CloseSession)
		sessionGroup.POST("/restore", r.sessionHandler.Restore)
		sessionGroup.POST("/refresh", r.sessionHandler.RefreshSession)
	}

	authGroup := e.Group("/auth", authenticate)
	{
		authGroup.POST("/login", r.sessionHandler.Login)
		authGroup.POST("/register", r.sessionHandler.Register)
		authGroup.POST("/google", r.sessionHandler.LoginWithGoogle)
		authGroup.POST("/guest", r.sessionHandler.LoginAsGuest)
		authGroup.POST("/logout", r.sessionHandler.Logout)
	}

	streakGroup := e.Group("/streak", authenticate)
	{
		streakGroup.POST("/observe", r.streakHandler.ObserveStreak)
		streakGroup.POST("/milestone/close", r.streakHandler.CloseMilestoneModal)
		streakGroup.GET("/share", r.streakHandler.ShareStreak)
	}

	progressGroup := e.Group("/progress", authenticate)
	{
		progressGroup.POST("/submissions", r.progressHandler.RecordSubmission)
		progressGroup.POST("/bookmarks/:questionId", r.progressHandler.ToggleBookmark)
	}
}

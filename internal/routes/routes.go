package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reachjvc/Daygame-coach-sub004/internal/config"
	"github.com/reachjvc/Daygame-coach-sub004/internal/handlers"
	"github.com/reachjvc/Daygame-coach-sub004/internal/middleware"
	"github.com/reachjvc/Daygame-coach-sub004/internal/repository"
	"github.com/reachjvc/Daygame-coach-sub004/internal/services"
	notifyws "github.com/reachjvc/Daygame-coach-sub004/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) error {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	approachRepo := repository.NewApproachRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)

	hub := notifyws.NewHub()
	go hub.Run()

	milestoneService := services.NewMilestoneService(milestoneRepo, services.DefaultMilestoneRules, hub)
	trackingService := services.NewTrackingService(db, sessionRepo, approachRepo, statsRepo, milestoneService)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(trackingService)
	statsHandler := handlers.NewStatsHandler(trackingService, milestoneService)
	notificationHandler := handlers.NewNotificationHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	users := authProtected.Group("/users")
	users.Put("/timezone", authHandler.UpdateTimezone)

	sessions := authProtected.Group("/sessions")
	sessions.Post("", sessionHandler.StartSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("/:id/approaches", sessionHandler.LogApproach)
	sessions.Post("/:id/finalize", sessionHandler.FinalizeSession)

	authProtected.Get("/stats", statsHandler.GetStats)
	authProtected.Get("/milestones", statsHandler.ListMilestones)

	// Outside the /v1 group: websocket clients authenticate via token query
	// parameter, not the Bearer header middleware.
	api.Use("/ws", notificationHandler.WebSocketAuth)
	api.Get("/ws", websocket.New(notificationHandler.HandleWebSocket))

	return registerDocsRoutes(app, cfg)
}

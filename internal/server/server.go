package server

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmorrow/larder/internal/cache"
	"github.com/jmorrow/larder/internal/config"
	"github.com/jmorrow/larder/internal/handlers"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
)

type Server struct {
	httpServer *http.Server
	config     config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService, notifier *services.Notifier, membershipCache cache.Cache) *Server {
	userRepo := repository.NewUserRepository(database)
	listRepo := repository.NewListRepository(database)
	invitationRepo := repository.NewInvitationRepository(database)
	itemRepo := repository.NewItemRepository(database)
	choreRepo := repository.NewChoreRepository(database)
	deviceTokenRepo := repository.NewDeviceTokenRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)

	listService := services.NewListService(listRepo)
	invitationService := services.NewInvitationService(invitationRepo, listRepo)
	itemService := services.NewItemService(itemRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	calendarService := services.NewCalendarService(listRepo, choreRepo, itemRepo)

	authHandler := handlers.NewAuthHandler(authService)
	listHandler := handlers.NewListHandler(listService, membershipCache)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	itemHandler := handlers.NewItemHandler(itemService)
	choreHandler := handlers.NewChoreHandler(choreService)
	deviceHandler := handlers.NewDeviceHandler(deviceTokenRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	tokenHandler := handlers.NewTokenHandler(tokenRepo)
	calendarHandler := handlers.NewCalendarHandler(calendarService, tokenRepo)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Get("/auth/login", authHandler.Login)
	router.Get("/auth/callback", authHandler.Callback)
	router.Post("/auth/logout", authHandler.Logout)

	// Calendar apps authenticate via query-string token.
	router.Get("/ical", calendarHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Get("/api/me", authHandler.Me)

		r.Get("/api/lists", listHandler.List)
		r.Post("/api/lists", listHandler.Create)

		r.Get("/api/invitations", invitationHandler.Pending)
		r.Post("/api/invitations/{invitationID}/accept", invitationHandler.Accept)
		r.Post("/api/invitations/{invitationID}/decline", invitationHandler.Decline)

		r.Get("/api/devices", deviceHandler.List)
		r.Post("/api/devices", deviceHandler.Register)
		r.Delete("/api/devices/{token}", deviceHandler.Unregister)

		r.Get("/api/notifications", notificationHandler.List)

		r.Get("/api/tokens", tokenHandler.List)
		r.Post("/api/tokens", tokenHandler.Create)
		r.Delete("/api/tokens/{tokenID}", tokenHandler.Delete)

		r.Route("/api/lists/{listID}", func(r chi.Router) {
			r.Use(middleware.RequireListMember(listRepo, membershipCache, cfg.Cache.TTL))

			r.Patch("/", listHandler.Rename)
			r.Delete("/", listHandler.Delete)
			r.Delete("/members/{memberID}", listHandler.RemoveMember)

			r.Post("/invitations", invitationHandler.Create)

			r.Get("/items", itemHandler.List)
			r.Post("/items", itemHandler.Create)
			r.Put("/items/{itemID}", itemHandler.Update)
			r.Delete("/items/{itemID}", itemHandler.Delete)
			r.Post("/items/{itemID}/adjust", itemHandler.AdjustStock)
			r.Post("/items/{itemID}/replaced", itemHandler.MarkReplaced)

			r.Get("/chores", choreHandler.List)
			r.Post("/chores", choreHandler.Create)
			r.Put("/chores/{choreID}", choreHandler.Update)
			r.Delete("/chores/{choreID}", choreHandler.Delete)
			r.Post("/chores/{choreID}/complete", choreHandler.Complete)
			r.Post("/chores/{choreID}/uncomplete", choreHandler.Uncomplete)
			r.Get("/chores/{choreID}/completions", choreHandler.History)
		})
	})

	// Read-only surface for automations authenticating with an API token.
	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(tokenRepo, userRepo))
		r.Use(middleware.RequireListMember(listRepo, membershipCache, cfg.Cache.TTL))

		r.Get("/api/ext/lists/{listID}/items", itemHandler.List)
		r.Get("/api/ext/lists/{listID}/chores", choreHandler.List)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		config: cfg,
	}
}

func (server *Server) Start() error {
	slog.Info("starting server", "address", server.httpServer.Addr)
	return server.httpServer.ListenAndServe()
}

func (server *Server) Shutdown(ctx context.Context) error {
	return server.httpServer.Shutdown(ctx)
}

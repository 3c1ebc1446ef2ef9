package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cargolink/freight-backend/internal/config"
	"github.com/cargolink/freight-backend/internal/directory"
	"github.com/cargolink/freight-backend/internal/handler"
	"github.com/cargolink/freight-backend/internal/mail"
	appmw "github.com/cargolink/freight-backend/internal/middleware"
	"github.com/cargolink/freight-backend/internal/repository"
	"github.com/cargolink/freight-backend/internal/service"
	"github.com/cargolink/freight-backend/internal/storage"
	"github.com/cargolink/freight-backend/internal/ws"
)

type Server struct {
	e     *echo.Echo
	repos []interface{ SetDB(*gorm.DB) }
	sha   string
	build string
}

func New(cfg *config.Config, db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			return strings.HasSuffix(u.Hostname(), "cargolink.app"), nil
		},
	}))

	threadRepo := repository.NewThreadRepository(db)
	freightRepo := repository.NewFreightRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	}
	hub := ws.NewHub(rdb)

	var mailer service.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(cfg)
	}

	authMw, err := appmw.NewAuthMiddleware(context.Background(), cfg.FirebaseProjectID, cfg.CredentialsFile)
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}
	userDir := directory.NewFirebaseDirectory(authMw.Client())

	notifSvc := service.NewNotificationService(notifRepo, prefRepo, userDir, mailer)
	policies := service.NewPolicyRegistry(freightRepo)
	messagingSvc := service.NewMessagingService(threadRepo, policies, hub, notifSvc, userDir)
	freightSvc := service.NewFreightService(freightRepo, messagingSvc)

	threadHandler := handler.NewThreadHandler(messagingSvc)
	freightHandler := handler.NewFreightHandler(freightSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)

	var attachmentStore *storage.AttachmentStore
	if cfg.StorageBucket != "" {
		if client, err := gcs.NewClient(context.Background()); err == nil {
			attachmentStore = storage.NewAttachmentStore(client, cfg.StorageBucket)
		} else {
			e.Logger.Warnf("storage client init failed: %v", err)
		}
	}
	attachmentHandler := handler.NewAttachmentHandler(attachmentStore)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	e.GET("/ws", func(c echo.Context) error {
		return ws.ServeWS(hub, messagingSvc, c)
	}, authMw.RequireAuth)

	api := e.Group("/api")
	api.GET("/threads", threadHandler.List, authMw.RequireAuth)
	api.GET("/threads/:id", threadHandler.Get, authMw.RequireAuth)
	api.GET("/threads/:id/messages", threadHandler.ListMessages, authMw.RequireAuth)
	api.POST("/threads/:id/messages", threadHandler.SendMessage, authMw.RequireAuth)
	api.POST("/threads/:id/read", threadHandler.MarkRead, authMw.RequireAuth)

	api.POST("/loads", freightHandler.PostLoad, authMw.RequireAuth)
	api.POST("/loads/:id/offers", freightHandler.PlaceOffer, authMw.RequireAuth)
	api.POST("/offers/:id/accept", freightHandler.AcceptOffer, authMw.RequireAuth)
	api.POST("/offers/:id/withdraw", freightHandler.WithdrawOffer, authMw.RequireAuth)

	api.POST("/jobs", freightHandler.PostJob, authMw.RequireAuth)
	api.POST("/jobs/:id/applications", freightHandler.ApplyToJob, authMw.RequireAuth)
	api.POST("/applications/:id/resolve", freightHandler.ResolveApplication, authMw.RequireAuth)

	api.POST("/trucks", freightHandler.PostTruck, authMw.RequireAuth)
	api.POST("/trucks/:id/bookings", freightHandler.RequestBooking, authMw.RequireAuth)
	api.POST("/bookings/:id/resolve", freightHandler.ResolveBooking, authMw.RequireAuth)

	api.POST("/resources", freightHandler.PostListing, authMw.RequireAuth)
	api.POST("/resources/:id/applications", freightHandler.ApplyToListing, authMw.RequireAuth)
	api.POST("/resource-applications/:id/resolve", freightHandler.ResolveResourceApplication, authMw.RequireAuth)

	api.POST("/trips/:id/complete", freightHandler.CompleteTrip, authMw.RequireAuth)

	api.GET("/notifications", notifHandler.List, authMw.RequireAuth)
	api.POST("/notifications/read-all", notifHandler.MarkAllRead, authMw.RequireAuth)
	api.GET("/me/notification-preferences", notifHandler.GetPreferences, authMw.RequireAuth)
	api.PUT("/me/notification-preferences", notifHandler.UpdatePreferences, authMw.RequireAuth)

	api.POST("/attachments", attachmentHandler.Upload, authMw.RequireAuth)

	return &Server{
		e:     e,
		repos: []interface{ SetDB(*gorm.DB) }{threadRepo, freightRepo, notifRepo, prefRepo},
		sha:   sha,
		build: buildTime,
	}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB injects the late-connected database into every repository; the
// server starts serving before the DB is reachable and answers
// store_unavailable until then.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	contentapp "github.com/crustntrust/site-api/internal/content/application"
	"github.com/crustntrust/site-api/internal/config"
	formsapp "github.com/crustntrust/site-api/internal/forms/application"
	"github.com/crustntrust/site-api/internal/identity"
	"github.com/crustntrust/site-api/internal/infrastructure/blob"
	"github.com/crustntrust/site-api/internal/infrastructure/messenger"
	mongodoc "github.com/crustntrust/site-api/internal/infrastructure/mongo"
	adminhttp "github.com/crustntrust/site-api/internal/interfaces/http/admin"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
	publichttp "github.com/crustntrust/site-api/internal/interfaces/http/public"
	settingsapp "github.com/crustntrust/site-api/internal/settings/application"
)

// Server owns the HTTP lifecycle and is the composition root for the public
// and admin handlers.
type Server struct {
	logger         *zap.Logger
	client         *mongo.Client
	location       *time.Location
	addr           string
	allowedOrigins []string
	submissions    *mongodoc.SubmissionRepository
	auth           *identity.Authenticator
	public         *publichttp.Handler
	admin          *adminhttp.Handler
}

// New wires repositories, services and handlers from cfg.
func New(ctx context.Context, cfg config.Config, client *mongo.Client, logger *zap.Logger) (*Server, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("timezone not found, using UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	store, err := blob.NewS3Store(ctx, blob.Config{
		Bucket:          cfg.BlobBucket,
		Region:          cfg.BlobRegion,
		Endpoint:        cfg.BlobEndpoint,
		AccessKeyID:     cfg.BlobAccessKeyID,
		SecretAccessKey: cfg.BlobSecretAccessKey,
		MediaBaseURL:    cfg.MediaBaseURL,
		URLTTL:          cfg.BlobURLTTL,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}

	db := client.Database(cfg.MongoDatabase)
	forms := mongodoc.NewFormRepository(db, cfg.FormCollection)
	submissions := mongodoc.NewSubmissionRepository(db, cfg.SubmissionCollection)
	settingsRepo := mongodoc.NewSettingsRepository(db, cfg.SettingsCollection)
	publications := mongodoc.NewPublicationRepository(db, cfg.PublicationCollection)
	locations := mongodoc.NewLocationRepository(db, cfg.LocationCollection)
	failures := mongodoc.NewFailedNotificationRepository(db, cfg.FailedNotificationCollection)

	catalogue := formsapp.NewCatalogue(forms, logger)
	settings := settingsapp.NewService(settingsRepo, logger)
	content := contentapp.NewService(publications, locations, store, logger)

	publicCfg := publichttp.Config{
		Logger:         logger,
		Forms:          catalogue,
		Submitter:      formsapp.NewSubmitEngine(submissions, store, logger),
		Settings:       settings,
		Content:        content,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	notifier := messenger.New(messenger.Config{
		Endpoint:           cfg.MessengerEndpoint,
		Destination:        cfg.MessengerDestination,
		AdminReviewBaseURL: cfg.AdminReviewBaseURL,
		HTTPClient:         &http.Client{Timeout: cfg.MessengerTimeout},
		Failures:           failures,
		Logger:             logger,
	})
	if notifier != nil {
		publicCfg.Notifier = notifier
	} else {
		logger.Info("messenger gateway not configured, submission notifications disabled")
	}

	return &Server{
		logger:         logger,
		client:         client,
		location:       loc,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		submissions:    submissions,
		auth:           identity.NewAuthenticator(cfg.JWTConfigs, cfg.JWTAudience, cfg.AdminEmailDomain),
		public:         publichttp.NewHandler(publicCfg),
		admin: adminhttp.NewHandler(adminhttp.Config{
			Logger:         logger,
			Forms:          catalogue,
			Reviews:        formsapp.NewReviewService(submissions, store, logger),
			Settings:       settings,
			Content:        content,
			MaxUploadBytes: cfg.MaxUploadBytes,
		}),
	}, nil
}

// Run serves HTTP until the process is signalled.
func (s *Server) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := s.submissions.EnsureIndexes(ctx); err != nil {
		s.logger.Warn("submission indexes not ensured", zap.Error(err))
	}
	cancel()

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

func (s *Server) routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(common.RequestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())
	router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			s.public.Register(r, common.OptionalSession(s.auth), common.RequireSession(s.auth, s.logger))
		})
		r.Route("/admin", func(r chi.Router) {
			r.Use(common.RequireAdmin(s.auth, s.logger))
			s.admin.Register(r)
		})
	})
	return router
}

// withCORS echoes allowed origins and answers preflight requests.
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,Last-Event-ID")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler reports MongoDB reachability only.
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().In(s.location).Format(time.RFC3339),
		})
	}
}

func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Warn("mongo disconnect failed", zap.Error(err))
	}
}

// waitForShutdown blocks until the listener fails or SIGINT/SIGTERM arrives,
// then drains in-flight requests and closes the Mongo client.
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Info("shutting down", zap.Stringer("signal", sig))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Warn("http shutdown failed", zap.Error(err))
		}
	}

	srv.shutdown(context.Background())
	return runErr
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vitohq/docintel/internal/api/handlers"
	"github.com/vitohq/docintel/internal/api/middleware"
	"github.com/vitohq/docintel/internal/audit"
	"github.com/vitohq/docintel/internal/cache"
	"github.com/vitohq/docintel/internal/config"
	"github.com/vitohq/docintel/internal/document"
	"github.com/vitohq/docintel/internal/persistence"
	"github.com/vitohq/docintel/internal/queue"
	"github.com/vitohq/docintel/internal/storage"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(rt.cfg.Server.RateLimitRPS, rt.cfg.Server.RateLimitBurst)
	r.Use(rl.Limit)

	// Health endpoints (no tenant context)
	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	store := persistence.NewCachedStore(
		persistence.NewPostgresStore(rt.db),
		cache.NewCache(rt.redis),
	)
	objects := storage.NewSupabaseStore(
		rt.cfg.Storage.SupabaseURL, rt.cfg.Storage.SupabaseKey,
		rt.cfg.Storage.Bucket, rt.cfg.Upload.MaxBytes,
	)
	auditSvc := audit.NewService(rt.db)
	queueClient := queue.NewClient(rt.cfg.Redis, rt.cfg.Worker)
	docSvc := document.NewService(store, objects, queueClient, auditSvc, rt.cfg.Storage.Bucket)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext)

		docH := handlers.NewDocumentHandler(docSvc, rt.cfg.Upload.MaxBytes)
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Ingest)
			r.Get("/{id}", docH.Get)
			r.Get("/{id}/items", docH.Items)
		})
	})

	return r
}

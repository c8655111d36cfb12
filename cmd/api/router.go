package main

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/vigil/internal/audit"
	"github.com/crucial707/vigil/internal/auth"
	"github.com/crucial707/vigil/internal/config"
	"github.com/crucial707/vigil/internal/handlers"
	"github.com/crucial707/vigil/internal/middleware"
	"github.com/crucial707/vigil/internal/repo"
	"github.com/crucial707/vigil/internal/storage"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// newRouter wires repositories, handlers and middleware over db.
func newRouter(db *sql.DB, cfg config.Config, log *zap.Logger) (http.Handler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	photos, err := storage.NewPhotoStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}

	userRepo := repo.NewUserRepo(db)
	occurrenceRepo := repo.NewOccurrenceRepo(db)
	roundRepo := repo.NewRoundRepo(db)
	shiftRepo := repo.NewShiftRepo(db)
	locationRepo := repo.NewLocationRepo(db)

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL())
	recorder := audit.NewRecorder(repo.NewAuditRepo(db), log)

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokens, Audit: recorder, Log: log}
	userHandler := &handlers.UserHandler{Repo: userRepo, Audit: recorder, Log: log}
	occurrenceHandler := &handlers.OccurrenceHandler{
		Repo:           occurrenceRepo,
		Rounds:         roundRepo,
		Photos:         photos,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Audit:          recorder,
		Log:            log,
	}
	roundHandler := &handlers.RoundHandler{Repo: roundRepo, Audit: recorder, Log: log}
	shiftHandler := &handlers.ShiftHandler{Repo: shiftRepo, Audit: recorder, Log: log}
	locationHandler := &handlers.LocationHandler{Repo: locationRepo, Audit: recorder, Log: log}
	dashboardHandler := &handlers.DashboardHandler{Repo: repo.NewDashboardRepo(db), Log: log}
	auditHandler := &handlers.AuditHandler{Repo: repo.NewAuditRepo(db), Log: log}
	systemHandler := &handlers.SystemHandler{
		DB:        db,
		Users:     userRepo,
		Locations: locationRepo,
		Env:       cfg.Env,
		Version:   version,
		StartedAt: time.Now().UTC(),
		Log:       log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RealIP(proxies))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.RequestLog(log))
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", systemHandler.Health)
	r.Get("/ready", systemHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/uploads/*", uploads(photos.Dir))

	jsonBody := middleware.JSONBody(middleware.DefaultMaxBodyBytes)
	can := middleware.Require

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.LoginRateLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst).Middleware, jsonBody).Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens, userRepo, log))

			r.With(jsonBody, can(auth.OpRegisterUser)).Post("/auth/register", authHandler.Register)
			r.With(can(auth.OpViewSelf)).Get("/auth/me", authHandler.Me)
			r.With(jsonBody, can(auth.OpChangePassword)).Put("/auth/change-password", authHandler.ChangePassword)

			r.With(can(auth.OpListUsers)).Get("/users", userHandler.ListUsers)
			r.With(jsonBody, can(auth.OpSetUserStatus)).Put("/users/{id}/status", userHandler.SetUserStatus)

			r.With(jsonBody, can(auth.OpCreateOccurrence)).Post("/occurrences", occurrenceHandler.CreateOccurrence)
			r.With(can(auth.OpListOccurrences)).Get("/occurrences", occurrenceHandler.ListOccurrences)
			r.With(can(auth.OpListOccurrencesByLevel)).Get("/occurrences/priority/{priority}", occurrenceHandler.ListByPriority)
			r.With(can(auth.OpGetOccurrence)).Get("/occurrences/{id}", occurrenceHandler.GetOccurrence)
			r.With(can(auth.OpUploadOccurrencePhoto)).Post("/occurrences/{id}/photos", occurrenceHandler.UploadPhoto)
			r.With(jsonBody, can(auth.OpResolveOccurrence)).Put("/occurrences/{id}/resolve", occurrenceHandler.ResolveOccurrence)

			r.With(jsonBody, can(auth.OpStartRound)).Post("/rounds", roundHandler.StartRound)
			r.With(can(auth.OpListRounds)).Get("/rounds", roundHandler.ListRounds)
			r.With(can(auth.OpGetActiveRound)).Get("/rounds/active", roundHandler.ActiveRound)
			r.With(can(auth.OpFinishRound)).Put("/rounds/{id}/finish", roundHandler.FinishRound)
			r.With(can(auth.OpInterruptRound)).Put("/rounds/{id}/interrupt", roundHandler.InterruptRound)

			r.With(jsonBody, can(auth.OpStartShift)).Post("/shifts", shiftHandler.StartShift)
			r.With(can(auth.OpListShifts)).Get("/shifts", shiftHandler.ListShifts)
			r.With(can(auth.OpGetCurrentShift)).Get("/shifts/current", shiftHandler.CurrentShift)
			r.With(can(auth.OpListActiveShift)).Get("/shifts/active", shiftHandler.ListActiveShifts)
			r.With(can(auth.OpFinishShift)).Put("/shifts/{id}/finish", shiftHandler.FinishShift)

			r.With(jsonBody, can(auth.OpCreateLocation)).Post("/locations", locationHandler.CreateLocation)
			r.With(can(auth.OpListLocations)).Get("/locations", locationHandler.ListLocations)
			r.With(jsonBody, can(auth.OpUpdateLocation)).Put("/locations/{id}", locationHandler.UpdateLocation)

			r.With(can(auth.OpViewDashboard)).Get("/dashboard/stats", dashboardHandler.Stats)
			r.With(can(auth.OpListAuditLogs)).Get("/audit-logs", auditHandler.ListAudit)
			r.With(can(auth.OpViewSystemInfo)).Get("/system/info", systemHandler.Info)
		})
	})

	return r, nil
}

// uploads serves stored photos. Directory listings are not exposed.
func uploads(dir string) http.Handler {
	files := http.StripPrefix(storage.URLPrefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/conferia/conferia/internal/accounts"
	"github.com/conferia/conferia/internal/contributions"
	"github.com/conferia/conferia/internal/fines"
	"github.com/conferia/conferia/internal/meetings"
	"github.com/conferia/conferia/internal/observability"
	"github.com/conferia/conferia/internal/reporting"
	"github.com/conferia/conferia/internal/vouchers"
	"github.com/conferia/conferia/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	ContributionHandler *contributions.Handler
	FineHandler         *fines.Handler
	MeetingHandler      *meetings.Handler
	AccountHandler      *accounts.Handler
	VoucherHandler      *vouchers.Handler
	ReportHandler       *reporting.Handler
	JobHandler          *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Conferia defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/treasury", func(api chi.Router) {
		if params.ContributionHandler != nil {
			params.ContributionHandler.MountRoutes(api)
		}
		if params.FineHandler != nil {
			params.FineHandler.MountRoutes(api)
		}
		if params.MeetingHandler != nil {
			params.MeetingHandler.MountRoutes(api)
		}
		if params.AccountHandler != nil {
			params.AccountHandler.MountRoutes(api)
		}
		if params.VoucherHandler != nil {
			params.VoucherHandler.MountRoutes(api)
		}
		if params.ReportHandler != nil {
			params.ReportHandler.MountRoutes(api)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			params.JobHandler.MountRoutes(jr)
		})
	}

	return r
}

package router

import (
	"net/http"

	"order-fraud-review/internal/interfaces/http/handler"
)

// LegacyWebhookPath is the callback path registered with the vendor by earlier deployments
const LegacyWebhookPath = "/api/solidus_signifyd/orders"

// Router holds all HTTP handlers
type Router struct {
	mux            *http.ServeMux
	webhookHandler *handler.WebhookHandler
	caseHandler    *handler.CaseHandler
	healthHandler  *handler.HealthHandler
	metricsHandler http.Handler
	metricsPath    string
}

// DefaultMetricsPath is used when no metrics path is configured
const DefaultMetricsPath = "/metrics"

// NewRouter creates a new router with all routes configured.
// caseHandler and metricsHandler may be nil when those features are disabled.
func NewRouter(
	webhookHandler *handler.WebhookHandler,
	caseHandler *handler.CaseHandler,
	healthHandler *handler.HealthHandler,
	metricsHandler http.Handler,
	metricsPath string,
) *Router {
	if metricsPath == "" {
		metricsPath = DefaultMetricsPath
	}
	r := &Router{
		mux:            http.NewServeMux(),
		webhookHandler: webhookHandler,
		caseHandler:    caseHandler,
		healthHandler:  healthHandler,
		metricsHandler: metricsHandler,
		metricsPath:    metricsPath,
	}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health endpoints
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)
	r.mux.HandleFunc("GET /live", r.healthHandler.Live)

	if r.metricsHandler != nil {
		r.mux.Handle("GET "+r.metricsPath, r.metricsHandler)
	}

	// Vendor case update callbacks
	r.mux.HandleFunc("POST /api/v1/fraud-review/orders", r.webhookHandler.CaseUpdate)
	r.mux.HandleFunc("POST "+LegacyWebhookPath, r.webhookHandler.CaseUpdate)

	// Case creation trigger
	if r.caseHandler != nil {
		r.mux.HandleFunc("POST /api/v1/fraud-review/orders/{number}/case", r.caseHandler.CreateCase)
	} else {
		r.mux.HandleFunc("POST /api/v1/fraud-review/orders/{number}/case", caseCreationDisabled)
	}
}

func caseCreationDisabled(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(`{"error":"case creation is disabled"}` + "\n"))
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-SIGNIFYD-SEC-HMAC-SHA256")

	if req.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.mux.ServeHTTP(w, req)
}

// Handler returns the http.Handler with request ids attached
func (r *Router) Handler() http.Handler {
	return handler.WithRequestID(r)
}

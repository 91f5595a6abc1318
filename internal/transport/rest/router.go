package rest

import (
	"net/http"

	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/transport/middleware"
)

// RouterDeps collects everything the router needs.
type RouterDeps struct {
	Health      *HealthHandler
	Auth        *AuthHandler
	Accounts    *AccountHandler
	Businesses  *BusinessHandler
	Assignments *AssignmentHandler
	Admin       *AdminHandler

	CORS      config.CORSConfig
	Logger    middleware.Middleware
	Recovery  middleware.Middleware
	RateLimit middleware.Middleware
}

// NewRouter wires all REST routes behind the middleware chain.
// Health probes and auth entry points stay public; everything else
// requires a bearer token.
func NewRouter(deps RouterDeps, authMw middleware.Middleware) http.Handler {
	mux := http.NewServeMux()

	// Public.
	mux.HandleFunc("GET /health", deps.Health.Health)
	mux.HandleFunc("GET /health/live", deps.Health.Live)
	mux.HandleFunc("GET /health/ready", deps.Health.Ready)

	authLimited := deps.RateLimit
	if authLimited == nil {
		authLimited = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("POST /api/v1/auth/register", authLimited(http.HandlerFunc(deps.Auth.Register)))
	mux.Handle("POST /api/v1/auth/login", authLimited(http.HandlerFunc(deps.Auth.Login)))

	// Protected.
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/v1/auth/me", deps.Auth.Profile)

	protected.HandleFunc("POST /api/v1/accounts", deps.Accounts.Create)
	protected.HandleFunc("GET /api/v1/accounts", deps.Accounts.List)
	protected.HandleFunc("GET /api/v1/accounts/{id}", deps.Accounts.Get)
	protected.HandleFunc("PUT /api/v1/accounts/{id}", deps.Accounts.Update)
	protected.HandleFunc("DELETE /api/v1/accounts/{id}", deps.Accounts.Delete)
	protected.HandleFunc("POST /api/v1/accounts/{id}/traffic-patterns", deps.Accounts.AddTrafficPattern)
	protected.HandleFunc("POST /api/v1/accounts/import", deps.Accounts.Import)
	protected.HandleFunc("GET /api/v1/accounts/import/sample", deps.Accounts.ImportSample)

	protected.HandleFunc("POST /api/v1/businesses", deps.Businesses.Create)
	protected.HandleFunc("GET /api/v1/businesses", deps.Businesses.List)
	protected.HandleFunc("GET /api/v1/businesses/{id}", deps.Businesses.Get)
	protected.HandleFunc("PUT /api/v1/businesses/{id}", deps.Businesses.Update)
	protected.HandleFunc("DELETE /api/v1/businesses/{id}", deps.Businesses.Delete)
	protected.HandleFunc("POST /api/v1/businesses/import", deps.Businesses.Import)
	protected.HandleFunc("GET /api/v1/businesses/import/sample", deps.Businesses.ImportSample)

	protected.HandleFunc("GET /api/v1/assignments/analyze", deps.Assignments.Analyze)
	protected.HandleFunc("POST /api/v1/assignments/find-safe", deps.Assignments.FindSafe)
	protected.HandleFunc("POST /api/v1/assignments", deps.Assignments.Assign)
	protected.HandleFunc("POST /api/v1/assignments/cancel", deps.Assignments.Unassign)
	protected.HandleFunc("POST /api/v1/assignments/complete", deps.Assignments.CompleteReview)

	protected.HandleFunc("POST /api/v1/admin/cooldowns/release", deps.Admin.ReleaseCooldowns)
	protected.HandleFunc("POST /api/v1/admin/traffic/dispatch", deps.Admin.DispatchTraffic)
	protected.HandleFunc("PUT /api/v1/admin/users/{id}/active", deps.Admin.SetUserActive)

	mux.Handle("/api/v1/", authMw(protected))

	chain := middleware.Chain(
		deps.Recovery,
		middleware.RequestID,
		deps.Logger,
		middleware.CORS(deps.CORS),
	)

	return chain(mux)
}

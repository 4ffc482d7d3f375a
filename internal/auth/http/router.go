package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jobfolio/auth/internal/auth/service"
	"github.com/jobfolio/auth/internal/auth/store"
	"github.com/jobfolio/auth/pkg/httpx"
	"github.com/jobfolio/auth/pkg/jwtx"
	"github.com/jobfolio/auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	accessCodec  *jwtx.Codec
	cookies      *CookieManager
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store         store.Store
	TokenService  *service.TokenService
	InviteService *service.InviteService
	UserService   *service.UserService
}

func NewRouter(
	accessCodec *jwtx.Codec,
	cookies *CookieManager,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		accessCodec:  accessCodec,
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (credential guessing)
	loginHandler := &LoginHandler{TokenService: r.TokenService, Cookies: r.cookies}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/refresh - strict rate limit by IP (token grinding)
	refreshHandler := &RefreshHandler{TokenService: r.TokenService, Cookies: r.cookies}
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit by IP
	logoutHandler := &LogoutHandler{TokenService: r.TokenService, Cookies: r.cookies}
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/register-admin - strict rate limit by IP (public endpoint)
	registerHandler := &RegisterAdminHandler{
		InviteService: r.InviteService,
		TokenService:  r.TokenService,
		Cookies:       r.cookies,
	}
	r.Mux.Handle("POST /auth/register-admin",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	meHandler := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.accessCodec),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	// admin wraps a handler with authn, the admin role check and a moderate
	// per-user rate limit.
	admin := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.accessCodec),
			httpx.RequireAdmin,
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	invites := &InvitesHandler{InviteService: r.InviteService}
	r.Mux.Handle("POST /admin/invites", admin(http.HandlerFunc(invites.HandleCreate)))
	r.Mux.Handle("GET /admin/invites", admin(http.HandlerFunc(invites.HandleList)))
	r.Mux.Handle("DELETE /admin/invites/{id}", admin(http.HandlerFunc(invites.HandleDelete)))

	impersonate := &ImpersonateHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /admin/impersonate", admin(impersonate))

	users := &UsersHandler{UserService: r.UserService}
	r.Mux.Handle("GET /admin/users", admin(http.HandlerFunc(users.HandleList)))
	r.Mux.Handle("GET /admin/users/{id}", admin(http.HandlerFunc(users.HandleGet)))
	r.Mux.Handle("POST /admin/users", admin(http.HandlerFunc(users.HandleCreate)))
	r.Mux.Handle("PATCH /admin/users/{id}", admin(http.HandlerFunc(users.HandleUpdate)))
	r.Mux.Handle("DELETE /admin/users/{id}", admin(http.HandlerFunc(users.HandleDelete)))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/karhulabs/authd/internal/auth/service"
	"github.com/karhulabs/authd/internal/auth/store"
	"github.com/karhulabs/authd/pkg/httpx"
	"github.com/karhulabs/authd/pkg/jwtx"
	"github.com/karhulabs/authd/pkg/slogx"

	_ "github.com/karhulabs/authd/api/authd" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.HS256
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
}

func NewRouter(
	signer *jwtx.HS256,
	buildVersion, corsOrigin string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(corsOrigin),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Authd API
//	@version		0.1.0
//	@description	Minimal role-based authentication service: signup, login and
//	@description	"who am I" over stateless 7-day bearer tokens.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	signupHandler := &SignupHandler{AuthService: r.AuthService}
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	meHandler := &MeHandler{AuthService: r.AuthService}

	// Credential endpoints get strict per-IP limits (brute force prevention).
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(signupHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Authenticated endpoint - token verified before the handler runs.
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.signer),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

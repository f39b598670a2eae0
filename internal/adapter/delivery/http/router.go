// Package http provides the HTTP delivery layer for the link shortener.
// It contains the handlers, request/response types and the router that
// exposes the public redirect and the /api surface.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/pkg/middleware/recoverer"

	httpSwagger "github.com/swaggo/http-swagger"
)

const defaultDocsFile = "./docs/swagger.yml"

// RouterOptions holds the deployment-specific settings of the router.
type RouterOptions struct {
	BaseURL  string // BaseURL prefixes every returned short link.
	HomePath string // HomePath receives clients whose identifier resolves to nothing.
	DocsFile string // DocsFile is the OpenAPI document served under /docs.
}

func (o *RouterOptions) setDefaults() {
	if o.HomePath == "" {
		o.HomePath = "/"
	}
	if o.DocsFile == "" {
		o.DocsFile = defaultDocsFile
	}
}

// NewRouter initializes a Chi router with the middleware stack and every route of the service.
func NewRouter(logger *httplog.Logger, urlUseCase urlUseCase, authUseCase authUseCase, opts RouterOptions) *chi.Mux {
	opts.setDefaults()

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(recoverer.New(logger.Logger))

	validate := newValidator()
	urlH := newURLHandler(urlUseCase, validate, opts.BaseURL, opts.HomePath)
	authH := newAuthHandler(authUseCase, validate)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))

	r.Get("/docs/swagger.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.DocsFile)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", handlePing)
		r.Post("/shorten", urlH.shortenURL)
		r.Post("/verify-passkey", authH.verifyPasskey)
		r.Get("/init-db", urlH.initDB)

		r.Route("/urls", func(r chi.Router) {
			r.Use(authH.requireToken)

			r.Get("/", urlH.listURLs)
			r.Get("/{id}", urlH.getURLStats)
			r.Delete("/{id}", urlH.deleteURL)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusFound)
	})
	r.Get("/{identifier}", urlH.redirect)

	return r
}

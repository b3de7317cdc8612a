package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Deps struct {
	Orders   *OrdersHandler
	Users    *UsersHandler
	Products *ProductsHandler
	Auth     *AuthHandler
	Authn    *Authenticator

	Log            zerolog.Logger
	RequestTimeout time.Duration
}

func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID, middleware.RealIP, requestLogger(d.Log), recoverer(d.Log))
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", d.Orders.list)
			r.Post("/", d.Authn.Require(d.Orders.create))
			r.Get("/customer/{customerId}", d.Orders.byCustomer)
			r.Get("/{id}", d.Orders.get)
			r.Put("/{id}", d.Authn.Require(d.Orders.update))
			r.Delete("/{id}", d.Authn.Require(d.Orders.remove))
			r.Get("/{id}/items", d.Orders.items)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", d.Users.list)
			r.Post("/", d.Authn.Optional(d.Users.create))
			r.Get("/{id}", d.Users.get)
			r.Put("/{id}", d.Authn.Require(d.Users.update))
			r.Delete("/{id}", d.Authn.Require(d.Users.remove))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", d.Products.list)
			r.Post("/", d.Authn.Require(d.Products.create))
			r.Get("/{id}", d.Products.get)
			r.Put("/{id}", d.Authn.Require(d.Products.update))
			r.Delete("/{id}", d.Authn.Require(d.Products.remove))
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", d.Auth.login)
			r.Get("/me", d.Authn.Require(d.Auth.me))
		})
	})
	return r
}

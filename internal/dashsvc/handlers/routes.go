package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes
		r.Get("/health", h.HealthHandler)
		r.Post("/auth/login", h.LoginHandler)

		// Secure routes. TokenFromQuery is included so browser websocket
		// clients can pass the JWT as ?jwt= since they cannot set headers.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(h.tokenAuth, jwtauth.TokenFromQuery, jwtauth.TokenFromHeader, jwtauth.TokenFromCookie))
			r.Use(jwtauth.Authenticator)

			r.Get("/ws", h.HandleWebSocket)

			r.Get("/layouts", h.ListLayoutsHandler)
			r.Get("/layouts/{name}", h.GetLayoutHandler)
			r.Put("/layouts/{name}", h.SaveLayoutHandler)

			r.Post("/query", h.QueryHandler)
			r.Post("/ask", h.AskHandler)
			r.Get("/summary", h.SummaryHandler)
		})
	})
}

func (h *Handler) InitAuth() {
	h.tokenAuth = jwtauth.New("HS256", []byte(h.cfg.JWTSecret), nil)
}

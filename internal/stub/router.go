package stub

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type contextKey string

const claimsKey contextKey = "claims"

// Router builds the HTTP surface of the fake backend.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Route("/follow-ups", func(r chi.Router) {
			r.Get("/", s.handleListFollowUps)
			r.Post("/", s.handleCreateFollowUp)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetFollowUp)
				r.Put("/", s.handleUpdateFollowUp)
				r.Get("/notes", s.handleListNotes)
				r.Post("/notes", s.handleCreateNote)
				r.Patch("/notes/{noteId}", s.handleUpdateNote)
				r.Delete("/notes/{noteId}", s.handleDeleteNote)
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.handleListMembers)
			r.Get("/search", s.handleSearchMembers)
			r.Patch("/{id}", s.handlePatchMember)
			r.Delete("/{id}", s.handleDeleteMember)
		})

		r.Get("/families", s.handleListFamilies)

		r.Route("/groups/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetGroup)
			r.Post("/members/{memberId}", s.handleEnroll)
			r.Delete("/members/{memberId}", s.handleDisenroll)
		})
	})

	return r
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		s.opts.Logger.Debug("stub request", "method", r.Method, "path", r.URL.Path)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "No autorizado")
			return
		}
		c, err := s.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "No autorizado")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, c)))
	})
}

func requestClaims(r *http.Request) *claims {
	c, _ := r.Context().Value(claimsKey).(*claims)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

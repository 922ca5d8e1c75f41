package handler

import (
	"net/http"

	"github.com/rs/cors"
	"github.com/sharewall/backend/internal/repository"
)

// Handler serves the infrastructure endpoints.
type Handler struct {
	db repository.DB
}

func New(db repository.DB) *Handler {
	return &Handler{db: db}
}

// CORS returns middleware that allows the given browser origins to call the API
// with credentials and a bearer token.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Length", "Retry-After"},
		MaxAge:           300,
		AllowCredentials: true,
	})
	return c.Handler
}

package middleware

import (
	"net/http"

	"stay-concierge/pkg/utils"

	"github.com/rs/cors"
)

// CORS membungkus router dengan rs/cors sesuai origin yang dikonfigurasi
func CORS(config utils.CORSConfig) func(http.Handler) http.Handler {
	origins := config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           300,
	})

	return c.Handler
}

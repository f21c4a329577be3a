package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS allows the comma separated origins; "*" or empty allows any.
func CORS(allowOrigin string) func(http.Handler) http.Handler {
	var origins []string
	for _, o := range strings.Split(allowOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", internalTokenHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, "Content-Disposition"},
		MaxAge:         600,
	})
	return c.Handler
}

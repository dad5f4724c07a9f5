package handler

import (
	"net/http"

	"docforge/internal/config"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"docforge"}`))
	}).Methods("GET")

	// Service description
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"service": "docforge",
			"endpoints": []string{
				"GET /health",
				"GET /templates",
				"GET /templates/{name}",
				"POST /generate",
				"POST /generate-with-template",
				"POST /inspect",
				"POST /replace",
				"POST /batch/generate",
			},
		})
	}).Methods("GET")

	// Initialize handlers
	generateHandler := NewGenerateHandler(container.Generator, container.Config, container.Logger)
	documentHandler := NewDocumentHandler(container.Inspector, container.Rewriter, container.Config, container.Logger)
	batchHandler := NewBatchHandler(container.Batch, container.Config, container.Logger)
	templateHandler := NewTemplateHandler(container.Logger)

	router.HandleFunc("/templates", templateHandler.List).Methods("GET")
	router.HandleFunc("/templates/{name}", templateHandler.Get).Methods("GET")
	router.HandleFunc("/generate", generateHandler.Generate).Methods("POST")
	router.HandleFunc("/generate-with-template", generateHandler.GenerateWithTemplate).Methods("POST")
	router.HandleFunc("/inspect", documentHandler.Inspect).Methods("POST")
	router.HandleFunc("/replace", documentHandler.Replace).Methods("POST")
	router.HandleFunc("/batch/generate", batchHandler.Generate).Methods("POST")

	router.Use(RequestIDMiddleware)
	router.Use(LoggingMiddleware(container.Logger))

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{
			"Content-Disposition",
			"X-Request-ID",
			"X-Open-Placeholders",
			"X-Replacements-Made",
			"X-Batch-Failed",
		},
		MaxAge: 300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"call-center-simulator/pkg/config"
	"call-center-simulator/pkg/handlers"
)

const minWriteTimeout = 15 * time.Second

// NewHTTPServer sizes WriteTimeout to outlast a full model round trip on
// /api/simulate/message.
func NewHTTPServer(config *config.Config, handler *handlers.Handler, gatherer prometheus.Gatherer, logger *logrus.Logger) *http.Server {
	writeTimeout := config.LLMTimeout() + 15*time.Second
	if writeTimeout < minWriteTimeout {
		writeTimeout = minWriteTimeout
	}

	return &http.Server{
		Addr:         ":" + config.Port,
		Handler:      NewRouter(config, handler, gatherer, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

func NewRouter(config *config.Config, handler *handlers.Handler, gatherer prometheus.Gatherer, logger *logrus.Logger) *mux.Router {
	router := mux.NewRouter()

	// Simulation routes
	simulate := router.PathPrefix("/api/simulate").Subrouter()
	simulate.HandleFunc("/start", handler.StartSimulation).Methods("POST")
	simulate.HandleFunc("/end", handler.EndSimulation).Methods("POST")
	simulate.HandleFunc("/message", handler.ProcessMessage).Methods("POST")
	simulate.HandleFunc("/transfer", handler.TransferCall).Methods("POST")
	simulate.HandleFunc("/note", handler.AddNote).Methods("POST")
	simulate.HandleFunc("/tag", handler.AddTag).Methods("POST")
	simulate.HandleFunc("/recording", handler.ToggleRecording).Methods("POST")
	simulate.HandleFunc("/{id}", handler.GetSimulation).Methods("GET")

	router.HandleFunc("/api/simulations", handler.ListSimulations).Methods("GET")
	router.HandleFunc("/api/agents", handler.ListAgents).Methods("GET")

	// Analytics routes
	calls := router.PathPrefix("/api/calls").Subrouter()
	calls.HandleFunc("/statistics", handler.CallStatistics).Methods("GET")
	calls.HandleFunc("/{id}/history", handler.CallHistory).Methods("GET")
	if config.APIToken != "" {
		calls.Use(bearerAuthMiddleware(config.APIToken, logger))
	}

	router.HandleFunc("/health", handler.Health).Methods("GET")

	// Metrics endpoint
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.Use(loggingMiddleware(logger))

	return router
}

func loggingMiddleware(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Debug("HTTP request processed")
		})
	}
}

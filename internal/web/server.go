package web

import (
	"encoding/json"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meridianyield/scm/internal/engine"
	"github.com/meridianyield/scm/internal/logger"
	"github.com/meridianyield/scm/internal/scm"
	"github.com/meridianyield/scm/internal/state"
)

var webLogger = logger.GetForComponent("web_server")

// WebServer exposes the keeper's state over HTTP: pass history from the
// database, live liquidity from the strategy, and Prometheus metrics.
type WebServer struct {
	router   *mux.Router
	port     string
	strategy *engine.Strategy
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, strategy *engine.Strategy) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		strategy: strategy,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// Prometheus metrics
	ws.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API endpoints. /passes/latest must precede /passes/{id}.
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/passes", ws.handleGetPasses).Methods("GET")
	api.HandleFunc("/passes/latest", ws.handleGetLatestPass).Methods("GET")
	api.HandleFunc("/passes/{id}", ws.handleGetPass).Methods("GET")
	api.HandleFunc("/params", ws.handleGetParams).Methods("GET")
	api.HandleFunc("/liquidity", ws.handleGetLiquidity).Methods("GET")
	api.HandleFunc("/slots", ws.handleGetSlots).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// handleHealth returns comprehensive server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var passInfo map[string]interface{}
	var hasErrors bool
	var lastPassTime *time.Time

	latestPass, passErr := state.GetLatestPass()
	if passErr == nil && latestPass != nil {
		passInfo = map[string]interface{}{
			"current_pass":     latestPass.PassNumber,
			"last_pass_time":   latestPass.Timestamp,
			"last_pass_status": passStatus(latestPass.Skipped, latestPass.SkipReason),
			"actions_executed": len(latestPass.Actions),
		}
		lastPassTime = &latestPass.Timestamp
	} else {
		passInfo = map[string]interface{}{
			"current_pass":     0,
			"last_pass_time":   nil,
			"last_pass_status": "unknown",
			"actions_executed": 0,
		}
		hasErrors = true
	}

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
		hasErrors = true
	}

	overallStatus := "OK"
	if hasErrors {
		overallStatus = "DEGRADED"
	}

	var sinceLastPassSeconds int64
	if lastPassTime != nil {
		sinceLastPassSeconds = int64(time.Since(*lastPassTime).Seconds())
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":                runtime.Version(),
			"goroutines_count":       runtime.NumGoroutine(),
			"alloc_bytes":            memStats.Alloc,
			"sys_bytes":              memStats.Sys,
			"gc_cycles":              memStats.NumGC,
			"since_last_pass_seconds": sinceLastPassSeconds,
		},
		"component": map[string]interface{}{
			"name":    "scm-staked-cooldown-manager",
			"version": "1.0.0",
		},
		"keeper_status": map[string]interface{}{
			"database_healthy": dbHealthy,
			"pass_info":        passInfo,
		},
	}

	statusCode := http.StatusOK
	if hasErrors {
		statusCode = http.StatusServiceUnavailable
	}

	ws.writeJSONResponse(w, statusCode, response)
}

func passStatus(skipped bool, skipReason string) string {
	switch {
	case skipped:
		return "skipped"
	case skipReason != "":
		return "failed"
	default:
		return "completed"
	}
}

// handleGetPasses returns paginated pass history
func (ws *WebServer) handleGetPasses(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	passes, err := state.GetRecentPasses(limit)
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get recent passes")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve passes")
		return
	}

	response := map[string]interface{}{
		"passes": passes,
		"count":  len(passes),
		"limit":  limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPass returns a specific pass by its UUID
func (ws *WebServer) handleGetPass(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	passID := vars["id"]

	pass, err := state.GetPassByID(passID)
	if err != nil {
		webLogger.Error().Err(err).Str("passId", passID).Msg("Failed to get pass")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pass")
		return
	}
	if pass == nil {
		ws.writeErrorResponse(w, http.StatusNotFound, "Pass not found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, pass)
}

// handleGetLatestPass returns the most recent pass
func (ws *WebServer) handleGetLatestPass(w http.ResponseWriter, r *http.Request) {
	pass, err := state.GetLatestPass()
	if err != nil || pass == nil {
		webLogger.Error().Err(err).Msg("Failed to get latest pass")
		ws.writeErrorResponse(w, http.StatusNotFound, "No passes found")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, pass)
}

// handleGetParams returns the strategy parameters currently in force
func (ws *WebServer) handleGetParams(w http.ResponseWriter, r *http.Request) {
	params := ws.strategy.Params()

	response := map[string]interface{}{
		"parameters":  params,
		"config_name": scm.DEFAULT_CONFIG_NAME,
		"timestamp":   time.Now().UTC(),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetLiquidity returns a live liquidity report from the strategy
func (ws *WebServer) handleGetLiquidity(w http.ResponseWriter, r *http.Request) {
	report, err := ws.strategy.LiquidityReport()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to assemble liquidity report")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve liquidity report")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, report)
}

// handleGetSlots returns the live slot projections
func (ws *WebServer) handleGetSlots(w http.ResponseWriter, r *http.Request) {
	views, err := ws.strategy.SlotViews()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to project slot views")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve slots")
		return
	}

	response := map[string]interface{}{
		"slots": views,
		"count": len(views),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the response writer to capture the status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

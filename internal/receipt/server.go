package receipt

import (
	"log/slog"
	"net/http"
)

// Server handles HTTP requests for estimates, receipt photos and baskets
type Server struct {
	service *Service
	mux     *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(service *Service) *Server {
	return NewServerWithMux(service, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, mux *http.ServeMux) *Server {
	s := &Server{
		service: service,
		mux:     mux,
	}
	s.registerRoutes()
	return s
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// registerRoutes registers all API routes on the server's mux
// Routes must be registered from most specific to least specific to avoid conflicts
func (s *Server) registerRoutes() {
	// Estimates
	s.mux.HandleFunc("POST /api/items/estimate", s.handleEstimateItem)
	s.mux.HandleFunc("POST /api/baskets/estimate", s.handleEstimateBasket)

	// Receipt photos
	s.mux.HandleFunc("POST /api/receipts/assess", s.handleAssessReceipt)
	s.mux.HandleFunc("POST /api/receipts/enhance", s.handleEnhanceReceipt)
	s.mux.HandleFunc("POST /api/receipts/scan", s.handleScanReceipt)
	s.mux.HandleFunc("POST /api/receipts/extraction", s.handleProcessExtraction)

	// Saved baskets
	s.mux.HandleFunc("GET /api/baskets/{id}/image", s.handleGetBasketImage)
	s.mux.HandleFunc("GET /api/baskets/{id}", s.handleGetBasket)
	s.mux.HandleFunc("DELETE /api/baskets/{id}", s.handleDeleteBasket)
	s.mux.HandleFunc("GET /api/baskets", s.handleListBaskets)

	s.mux.HandleFunc("GET /api/categories", s.handleListCategories)
}

// Handler returns the mux wrapped with the CORS middleware
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

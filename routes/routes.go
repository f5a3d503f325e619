package routes

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ThousifMd/MatchlensAI/controllers"
	"github.com/ThousifMd/MatchlensAI/middleware"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "matchlens-api",
	})
}

// InitRouter wires every endpoint. All dependencies come in through the
// controllers; nothing here touches globals.
func InitRouter(
	intake *controllers.IntakeController,
	reads *controllers.ReadController,
	admin *controllers.AdminController,
) *mux.Router {
	r := mux.NewRouter()

	// Health check endpoint for container probes (root level)
	r.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	// CORS - origins from CORS_ALLOWED_ORIGINS (comma-separated) or defaults
	origins := []string{
		"https://matchlens.ai", "https://www.matchlens.ai",
		"http://localhost:3000", "http://127.0.0.1:3000",
	}
	if originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS"); originsEnv != "" {
		for _, p := range strings.Split(originsEnv, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})

	api := r.PathPrefix("/v1").Subrouter()

	// Catch-all OPTIONS handler for CORS preflight
	api.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	// Intake is the expensive path; keep retry storms from one client in check.
	intakeLimiter := middleware.NewIPRateLimiter(30, time.Minute)

	// Checkout + commit workflow
	api.Handle("/paypal/create-order", http.HandlerFunc(intake.CreatePayPalOrder)).Methods(http.MethodPost)
	api.Handle("/store-payment-profile", intakeLimiter.Middleware(http.HandlerFunc(intake.StorePaymentProfile))).Methods(http.MethodPost)

	// Read surface
	api.Handle("/payments/order/{orderID}", http.HandlerFunc(reads.GetPaymentByOrderID)).Methods(http.MethodGet)
	api.Handle("/payments/{paymentID}", http.HandlerFunc(reads.GetPaymentByID)).Methods(http.MethodGet)
	api.Handle("/profiles/{userID}", http.HandlerFunc(reads.GetProfile)).Methods(http.MethodGet)

	// Admin surface
	adminLoginLimiter := middleware.NewIPRateLimiter(5, time.Minute)
	api.Handle("/admin/login", adminLoginLimiter.Middleware(http.HandlerFunc(admin.Login))).Methods(http.MethodPost)

	adminRouter := api.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.AdminAuthMiddleware)
	adminRouter.Handle("/submissions", http.HandlerFunc(reads.ListSubmissions)).Methods(http.MethodGet)
	adminRouter.Handle("/payments/{paymentID}/status", http.HandlerFunc(admin.UpdatePaymentStatus)).Methods(http.MethodPut)

	// Health check inside the API prefix as well (load balancer target groups)
	api.Handle("/health", http.HandlerFunc(healthHandler)).Methods(http.MethodGet)

	return r
}

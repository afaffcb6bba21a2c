package service

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/auth"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/middleware"
)

// NewRouter assembles the full API surface.
//
// The split helpers are unauthenticated: they are pure functions over
// public inputs. The notification log requires a wallet-signed session,
// since it is per-user state.
func NewRouter(authSvc *AuthService, splitSvc *SplitService, notifSvc *NotificationService, jwtManager *auth.JWTManager) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	authSvc.RegisterRoutes(api)
	splitSvc.RegisterRoutes(api)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth(jwtManager))
	notifSvc.RegisterRoutes(protected)

	return r
}

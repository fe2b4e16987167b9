package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/weekly", handler.GetWeeklyMatches)
	mux.HandleFunc("GET /v1/matches/weekly/grouped", handler.GetWeeklyMatchesGrouped)
	mux.HandleFunc("GET /v1/matches/provider/status", handler.GetProviderStatus)
	mux.HandleFunc("GET /v1/quinielas", handler.ListPools)
	mux.HandleFunc("GET /v1/quinielas/{poolID}", handler.GetPool)
	mux.HandleFunc("GET /v1/stats/global", handler.GetGlobalStats)
	mux.HandleFunc("GET /v1/stats/history", handler.GetPoolsHistory)
	mux.HandleFunc("GET /v1/stats/users/{userID}", handler.GetUserStats)
	mux.HandleFunc("GET /v1/stats/compare", handler.CompareUsers)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPoolRoutes(mux, handler, verifier)
	registerAuthorizedPredictionRoutes(mux, handler, verifier)
	registerAuthorizedPaymentRoutes(mux, handler, verifier)
	registerAuthorizedAdminRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/refresh-stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshStatsJob)))
}

func registerAuthorizedPoolRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/quinielas", RequireAuth(verifier, http.HandlerFunc(handler.CreatePool)))
	mux.Handle("POST /v1/quinielas/{poolID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinPool)))
	mux.Handle("POST /v1/quinielas/{poolID}/close", RequireAuth(verifier, http.HandlerFunc(handler.ClosePool)))
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("PUT /v1/quinielas/{poolID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/quinielas/{poolID}/predictions", RequireAuth(verifier, http.HandlerFunc(handler.ListPoolPredictions)))
	mux.Handle("GET /v1/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
}

func registerAuthorizedPaymentRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/payments/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPayments)))
	mux.Handle("POST /v1/payments/{paymentID}/paid", RequireAuth(verifier, http.HandlerFunc(handler.MarkPaymentAsPaid)))
}

func registerAuthorizedAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/matches", RequireAuth(verifier, http.HandlerFunc(handler.CreateManualMatch)))
	mux.Handle("POST /v1/matches/{matchID}/result", RequireAuth(verifier, http.HandlerFunc(handler.RecordMatchResult)))
}

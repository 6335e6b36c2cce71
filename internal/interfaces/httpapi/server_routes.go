package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler == nil {
		return
	}

	mux.Handle("GET /metrics", metricsHandler)
}

func registerPredictionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /api/predictions", handler.GetPredictions)
	mux.HandleFunc("GET /api/predictions/{predictionType}", handler.GetPredictionsByType)
	mux.HandleFunc("GET /api/dates", handler.GetAvailableDates)
	mux.HandleFunc("POST /api/refresh", handler.RefreshData)
	mux.HandleFunc("GET /api/status", handler.GetStatus)
	// Single game lookup across yesterday, today and tomorrow.
	mux.HandleFunc("GET /api/games/{gameID}/prediction", handler.GetGamePrediction)
}

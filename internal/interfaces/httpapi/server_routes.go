package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAuctionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/items/{itemID}/bids", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBid)))
	mux.Handle("POST /v1/auctions/{auctionID}/abandon", RequireAuth(verifier, http.HandlerFunc(handler.Abandon)))
	mux.Handle("GET /v1/leagues/{leagueID}/auctions", RequireAuth(verifier, http.HandlerFunc(handler.ListOpenAuctions)))
	mux.Handle("GET /v1/leagues/{leagueID}/participants/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyParticipantSummary)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sweep-auctions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAuctionSweep)))
	mux.Handle("POST /v1/internal/jobs/sweep-timers", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunTimerSweep)))
	mux.Handle("POST /v1/internal/jobs/sweep-compliance", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunComplianceSweep)))
}

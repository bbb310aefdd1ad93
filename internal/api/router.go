package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
)

type Router struct {
	survey    *services.SurveyService
	dashboard *services.DashboardService
	exports   *services.ExportService
	auth      *services.DashboardAuthService
	tokens    *middleware.TokenIssuer
	limiter   *middleware.RateLimiter
	log       *zap.Logger
}

// Deps bundles the collaborators a Router needs. Limiter may be nil to
// disable submit throttling.
type Deps struct {
	Survey    *services.SurveyService
	Dashboard *services.DashboardService
	Exports   *services.ExportService
	Auth      *services.DashboardAuthService
	Tokens    *middleware.TokenIssuer
	Limiter   *middleware.RateLimiter
	Log       *zap.Logger
}

func NewRouter(d Deps) *Router {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		survey:    d.Survey,
		dashboard: d.Dashboard,
		exports:   d.Exports,
		auth:      d.Auth,
		tokens:    d.Tokens,
		limiter:   d.Limiter,
		log:       log,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questions", rt.handleQuestions)
	mux.Handle("POST /api/responses", rt.throttled(http.HandlerFunc(rt.handleSubmit)))
	mux.HandleFunc("POST /api/auth/login", rt.handleLogin)

	mux.Handle("GET /api/dashboard", rt.protected(rt.handleDashboard))
	mux.Handle("GET /api/responses", rt.protected(rt.handleListResponses))
	mux.Handle("DELETE /api/responses", rt.protected(rt.handleClear))
	mux.Handle("GET /api/export", rt.protected(rt.handleExport))
	mux.Handle("POST /api/import", rt.protected(rt.handleImport))
}

func (rt *Router) protected(h http.HandlerFunc) http.Handler {
	return rt.tokens.WithAuth(middleware.RequireAuth(h))
}

func (rt *Router) throttled(h http.Handler) http.Handler {
	if rt.limiter == nil {
		return h
	}
	return rt.limiter.Middleware(h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

// writeError maps service error codes onto HTTP statuses. Anything
// unclassified is logged and hidden behind a 500.
func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, ok := services.ErrorCodeOf(err)
	if !ok {
		rt.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	body := errorBody{Error: err.Error(), Code: string(code)}
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
	}
	status := http.StatusInternalServerError
	switch code {
	case services.ErrorInvalid:
		status = http.StatusBadRequest
	case services.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case services.ErrorNotFound:
		status = http.StatusNotFound
	case services.ErrorTooManyRequests:
		status = http.StatusTooManyRequests
	case services.ErrorPersistence:
		rt.log.Error("persistence failed", zap.String("path", r.URL.Path), zap.Error(err))
		body.Error = "storage unavailable"
	}
	writeJSON(w, status, body)
}

// decodeJSON rejects unknown fields and trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.NewInvalidError("request body too large")
		}
		return services.NewInvalidError("invalid JSON body: " + err.Error())
	}
	if dec.More() {
		return services.NewInvalidError("invalid JSON body: trailing data")
	}
	return nil
}

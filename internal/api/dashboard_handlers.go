package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/services"
	"github.com/soaringjerry/clima/internal/utils"
)

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	res, err := rt.auth.Login(req)
	if err != nil {
		rt.log.Info("dashboard login rejected", zap.String("ip", middleware.ClientIP(r)))
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GET /api/dashboard
func (rt *Router) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.dashboard.Summary())
}

// GET /api/responses?recent=n
func (rt *Router) handleListResponses(w http.ResponseWriter, r *http.Request) {
	if s := r.URL.Query().Get("recent"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			rt.writeError(w, r, services.NewInvalidError("recent must be a non-negative integer"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"responses": rt.survey.Recent(n)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"responses": rt.survey.Responses()})
}

// DELETE /api/responses
func (rt *Router) handleClear(w http.ResponseWriter, r *http.Request) {
	err := rt.survey.Clear(r.Context())
	if errors.Is(err, services.ErrPersistence) {
		writeNotPersisted(w, r, map[string]any{})
		return
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	sub, _ := middleware.SubjectFromContext(r.Context())
	rt.log.Info("responses cleared via dashboard", zap.String("by", sub))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GET /api/export?format=json|long|wide
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := rt.exports.Export(r.URL.Query().Get("format"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// POST /api/import with an exported JSON snapshot as body.
func (rt *Router) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		rt.writeError(w, r, services.NewInvalidError("read body: "+err.Error()))
		return
	}
	n, err := rt.survey.Import(r.Context(), data)
	if errors.Is(err, services.ErrPersistence) {
		writeNotPersisted(w, r, map[string]any{"imported": n})
		return
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	sub, _ := middleware.SubjectFromContext(r.Context())
	rt.log.Info("snapshot imported via dashboard", zap.String("by", sub), zap.Int("responses", n))
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "imported": n})
}

// writeNotPersisted reports a change that took effect in memory but whose
// snapshot save failed.
func writeNotPersisted(w http.ResponseWriter, r *http.Request, body map[string]any) {
	body["ok"] = true
	body["persisted"] = false
	body["message"] = utils.T(middleware.LocaleFromContext(r.Context()), "dashboard.not_persisted")
	writeJSON(w, http.StatusAccepted, body)
}

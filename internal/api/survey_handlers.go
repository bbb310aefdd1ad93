package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soaringjerry/clima/internal/middleware"
	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/services"
	"github.com/soaringjerry/clima/internal/utils"
)

type questionOut struct {
	ID       string          `json:"id"`
	Text     string          `json:"text"`
	Category models.Category `json:"category"`
	Weight   float64         `json:"weight"`
}

type categoryOut struct {
	ID        models.Category `json:"id"`
	Label     string          `json:"label"`
	Questions []string        `json:"questions"`
}

// GET /api/questions?lang=xx
func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	catalog := rt.survey.Catalog()

	questions := make([]questionOut, 0, catalog.Len())
	for _, q := range catalog.Questions() {
		questions = append(questions, questionOut{ID: q.ID, Text: q.Text(locale), Category: q.Category, Weight: q.Weight})
	}
	categories := make([]categoryOut, 0, len(catalog.Categories()))
	for _, c := range catalog.Categories() {
		ids := []string{}
		for _, q := range catalog.ByCategory(c) {
			ids = append(ids, q.ID)
		}
		categories = append(categories, categoryOut{ID: c, Label: utils.T(locale, "category."+string(c)), Questions: ids})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"locale":        locale,
		"questions":     questions,
		"categories":    categories,
		"rating_min":    services.MinRating,
		"rating_max":    services.MaxRating,
		"rating_labels": utils.RatingLabels(locale, services.MinRating, services.MaxRating),
	})
}

type submitRequest struct {
	Ratings     map[string]json.Number `json:"ratings"`
	Improvement string                 `json:"improvement"`
	GoodPoints  string                 `json:"goodPoints"`
}

// POST /api/responses
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		rt.writeError(w, r, err)
		return
	}
	ratings, err := services.ParseRatings(req.Ratings)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	progress := rt.survey.Catalog().Progress(ratings)
	rec, err := rt.survey.Submit(r.Context(), models.Submission{
		Ratings:         ratings,
		ImprovementText: req.Improvement,
		GoodPointsText:  req.GoodPoints,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{
			"response":  rec,
			"persisted": true,
			"progress":  progress,
			"message":   utils.T(locale, "survey.thanks"),
		})
	case errors.Is(err, services.ErrPersistence):
		// The record is held in memory even though the backend failed.
		writeJSON(w, http.StatusAccepted, map[string]any{
			"response":  rec,
			"persisted": false,
			"progress":  progress,
			"message":   utils.T(locale, "survey.not_persisted"),
		})
	case progress.Answered < progress.Total && errors.Is(err, services.ErrValidation):
		var ve *services.ValidationError
		field := ""
		if errors.As(err, &ve) {
			field = ve.Field
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    utils.T(locale, "survey.incomplete"),
			"code":     string(services.ErrorInvalid),
			"field":    field,
			"progress": progress,
		})
	default:
		rt.writeError(w, r, err)
	}
}

package models

import "time"

// Category groups questions on the dashboard (e.g. comunicacao, lideranca).
type Category string

// Question is a weighted survey statement rated on a 1..5 agreement scale.
type Question struct {
	ID       string            `json:"id" mapstructure:"id" validate:"required"`
	TextI18n map[string]string `json:"text_i18n" mapstructure:"text_i18n" validate:"required,min=1"`
	Category Category          `json:"category" mapstructure:"category" validate:"required"`
	Weight   float64           `json:"weight" mapstructure:"weight" validate:"gt=0"`
}

// Text returns the statement in the given locale, falling back to English.
func (q Question) Text(locale string) string {
	if s := q.TextI18n[locale]; s != "" {
		return s
	}
	if s := q.TextI18n["en"]; s != "" {
		return s
	}
	for _, s := range q.TextI18n {
		return s
	}
	return q.ID
}

// Ratings maps question ids to a rating in [1, 5].
// A question id absent from the map is unanswered.
type Ratings map[string]int

// Clone returns an independent copy.
func (r Ratings) Clone() Ratings {
	if r == nil {
		return nil
	}
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Submission is a candidate response built by the UI from user input.
type Submission struct {
	Ratings         Ratings `json:"ratings"`
	ImprovementText string  `json:"improvement"`
	GoodPointsText  string  `json:"goodPoints"`
}

// StoredResponse is a submission accepted by the response store.
// The JSON shape matches the snapshots written by the original browser form.
type StoredResponse struct {
	ID              string    `json:"id"`
	Ratings         Ratings   `json:"ratings"`
	ImprovementText string    `json:"improvement"`
	GoodPointsText  string    `json:"goodPoints"`
	CreatedAt       time.Time `json:"timestamp"`
}

// Clone returns a copy that shares no mutable state with r.
func (r StoredResponse) Clone() StoredResponse {
	r.Ratings = r.Ratings.Clone()
	return r
}

// EvolutionPoint is one point of the recent-trend chart.
type EvolutionPoint struct {
	X int     `json:"x"`
	Y float64 `json:"y"`
}

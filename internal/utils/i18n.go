package utils

import "strconv"

// Server-side strings only. Question texts live in the catalog.

var translations = map[string]map[string]string{
	"en": {
		"health.ok":                "ok",
		"rating.1":                 "Strongly disagree",
		"rating.2":                 "Disagree",
		"rating.3":                 "Neutral",
		"rating.4":                 "Agree",
		"rating.5":                 "Strongly agree",
		"category.comunicacao":     "Communication",
		"category.lideranca":       "Leadership",
		"category.ambiente":        "Work environment",
		"category.desenvolvimento": "Professional development",
		"survey.thanks":            "Thank you for your participation!",
		"survey.incomplete":        "Please answer all questions before submitting.",
		"survey.not_persisted":     "Response recorded but could not be saved permanently.",
		"dashboard.not_persisted":  "Change applied but could not be saved permanently.",
	},
	"pt": {
		"health.ok":                "ok",
		"rating.1":                 "Discordo totalmente",
		"rating.2":                 "Discordo",
		"rating.3":                 "Neutro",
		"rating.4":                 "Concordo",
		"rating.5":                 "Concordo totalmente",
		"category.comunicacao":     "Comunicação",
		"category.lideranca":       "Liderança",
		"category.ambiente":        "Ambiente de trabalho",
		"category.desenvolvimento": "Desenvolvimento profissional",
		"survey.thanks":            "Obrigado pela sua participação!",
		"survey.incomplete":        "Por favor, responda todas as perguntas antes de enviar.",
		"survey.not_persisted":     "Resposta registrada, mas não foi possível salvá-la permanentemente.",
		"dashboard.not_persisted":  "Alteração aplicada, mas não foi possível salvá-la permanentemente.",
	},
}

// T returns the translated string for key in locale; falls back to English,
// then to the key itself.
func T(locale, key string) string {
	if v, ok := translations[locale][key]; ok {
		return v
	}
	if v, ok := translations["en"][key]; ok {
		return v
	}
	return key
}

// RatingLabels returns the labels for ratings lo..hi in locale.
func RatingLabels(locale string, lo, hi int) map[int]string {
	out := make(map[int]string, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out[v] = T(locale, "rating."+strconv.Itoa(v))
	}
	return out
}

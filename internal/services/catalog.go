package services

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/soaringjerry/clima/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

const (
	CategoryCommunication models.Category = "comunicacao"
	CategoryLeadership    models.Category = "lideranca"
	CategoryEnvironment   models.Category = "ambiente"
	CategoryDevelopment   models.Category = "desenvolvimento"
)

// Catalog is the fixed questionnaire. It is immutable once built.
type Catalog struct {
	questions  []models.Question
	byID       map[string]int
	categories []models.Category
	byCategory map[models.Category][]models.Question
}

// NewCatalog validates questions and indexes them. Categories keep the order
// in which they first appear.
func NewCatalog(questions []models.Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, newValidationError("questions", "catalog is empty")
	}
	validate := validator.New()
	c := &Catalog{
		questions:  make([]models.Question, 0, len(questions)),
		byID:       make(map[string]int, len(questions)),
		byCategory: map[models.Category][]models.Question{},
	}
	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, newValidationError(fmt.Sprintf("questions[%d]", i), "%v", err)
		}
		if math.IsInf(q.Weight, 0) || math.IsNaN(q.Weight) {
			return nil, newValidationError(fmt.Sprintf("questions[%d].weight", i), "weight must be finite")
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, newValidationError(fmt.Sprintf("questions[%d].id", i), "duplicate question id %q", q.ID)
		}
		text := make(map[string]string, len(q.TextI18n))
		for k, v := range q.TextI18n {
			text[k] = v
		}
		q.TextI18n = text
		c.byID[q.ID] = len(c.questions)
		c.questions = append(c.questions, q)
		if _, seen := c.byCategory[q.Category]; !seen {
			c.categories = append(c.categories, q.Category)
		}
		c.byCategory[q.Category] = append(c.byCategory[q.Category], q)
	}
	return c, nil
}

// Questions returns the catalog in presentation order.
func (c *Catalog) Questions() []models.Question {
	return append([]models.Question(nil), c.questions...)
}

func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

func (c *Catalog) ByCategory(cat models.Category) []models.Question {
	return append([]models.Question(nil), c.byCategory[cat]...)
}

func (c *Catalog) Question(id string) (models.Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Question{}, false
	}
	return c.questions[i], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Len() int { return len(c.questions) }

// Progress reports how much of the questionnaire ratings covers.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

func (c *Catalog) Progress(ratings models.Ratings) Progress {
	answered := 0
	for id := range ratings {
		if c.Has(id) {
			answered++
		}
	}
	p := Progress{Answered: answered, Total: len(c.questions)}
	if p.Total > 0 {
		p.Percent = int(math.Round(float64(answered) / float64(p.Total) * 100))
	}
	return p
}

// Complete reports whether every question has a rating.
func (c *Catalog) Complete(ratings models.Ratings) bool {
	for _, q := range c.questions {
		if _, ok := ratings[q.ID]; !ok {
			return false
		}
	}
	return true
}

// validateRatings enforces the unknown-key rejection policy and the rating range.
func (c *Catalog) validateRatings(ratings models.Ratings) error {
	for id, v := range ratings {
		if !c.Has(id) {
			return newValidationError("ratings."+id, "unknown question id")
		}
		if v < MinRating || v > MaxRating {
			return newValidationError("ratings."+id, "rating %d out of range [%d,%d]", v, MinRating, MaxRating)
		}
	}
	return nil
}

// DefaultCatalog is the organizational-climate questionnaire.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultQuestions())
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

func DefaultQuestions() []models.Question {
	q := func(id string, cat models.Category, w float64, en, pt string) models.Question {
		return models.Question{ID: id, Category: cat, Weight: w, TextI18n: map[string]string{"en": en, "pt": pt}}
	}
	return []models.Question{
		q("comunicacao_1", CategoryCommunication, 0.3,
			"Leadership communication is clear and effective",
			"A comunicação da liderança é clara e eficaz"),
		q("comunicacao_2", CategoryCommunication, 0.2,
			"I receive constructive feedback on my performance",
			"Recebo feedback construtivo sobre meu desempenho"),
		q("lideranca_1", CategoryLeadership, 0.25,
			"My manager shows confidence in my abilities",
			"Meu gestor demonstra confiança em minha capacidade"),
		q("lideranca_2", CategoryLeadership, 0.25,
			"Leadership makes decisions fairly and transparently",
			"A liderança toma decisões de forma justa e transparente"),
		q("lideranca_3", CategoryLeadership, 0.2,
			"I feel supported by leadership in challenging moments",
			"Sinto-me apoiado pela liderança em momentos desafiadores"),
		q("ambiente_1", CategoryEnvironment, 0.3,
			"The work environment encourages collaboration between teams",
			"O ambiente de trabalho promove colaboração entre as equipes"),
		q("ambiente_2", CategoryEnvironment, 0.25,
			"I feel comfortable expressing my opinions",
			"Sinto-me confortável para expressar minhas opiniões"),
		q("ambiente_3", CategoryEnvironment, 0.2,
			"Work-life balance is respected",
			"O equilíbrio entre vida pessoal e profissional é respeitado"),
		q("desenvolvimento_1", CategoryDevelopment, 0.3,
			"I have opportunities for growth and development",
			"Tenho oportunidades de crescimento e desenvolvimento"),
		q("desenvolvimento_2", CategoryDevelopment, 0.25,
			"I receive adequate training to perform my role",
			"Recebo treinamentos adequados para desempenhar minha função"),
	}
}

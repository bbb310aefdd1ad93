package services

import (
	"iter"

	"github.com/soaringjerry/clima/internal/models"
)

// DefaultEvolutionWindow is the number of trailing responses charted on the dashboard.
const DefaultEvolutionWindow = 10

// Metrics derives dashboard scores from one snapshot of the response store.
// It holds no other state and never fails.
type Metrics struct {
	catalog   *Catalog
	responses []models.StoredResponse
}

func NewMetrics(catalog *Catalog, snapshot []models.StoredResponse) *Metrics {
	return &Metrics{catalog: catalog, responses: snapshot}
}

// CategoryAverage normalizes the weighted sum by the answered weight and then
// divides again by the number of stored responses. Dashboards depend on this
// exact formula, so the second division stays.
func (m *Metrics) CategoryAverage(cat models.Category) float64 {
	if len(m.responses) == 0 {
		return 0
	}
	questions := m.catalog.ByCategory(cat)
	var totalWeightedScore, totalWeight float64
	for _, r := range m.responses {
		for _, q := range questions {
			score, ok := r.Ratings[q.ID]
			if !ok || score == 0 {
				continue
			}
			totalWeightedScore += float64(score) * q.Weight
			totalWeight += q.Weight
		}
	}
	if totalWeight <= 0 {
		return 0
	}
	return totalWeightedScore / totalWeight / float64(len(m.responses))
}

// CategoryAverages returns CategoryAverage for every catalog category.
func (m *Metrics) CategoryAverages() map[models.Category]float64 {
	out := make(map[models.Category]float64, len(m.catalog.categories))
	for _, c := range m.catalog.categories {
		out[c] = m.CategoryAverage(c)
	}
	return out
}

// OverallAverage is the mean of the category averages that have data.
// Categories without data are left out rather than counted as zero.
func (m *Metrics) OverallAverage() float64 {
	var sum float64
	n := 0
	for _, c := range m.catalog.categories {
		if avg := m.CategoryAverage(c); avg > 0 {
			sum += avg
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ResponseAverage is the unweighted mean of the ratings present in r.
func ResponseAverage(r models.StoredResponse) float64 {
	if len(r.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, v := range r.Ratings {
		sum += v
	}
	return float64(sum) / float64(len(r.Ratings))
}

// EvolutionSeries yields one point per response among the last window
// responses, numbered from 1. Each range over the sequence recomputes it.
func (m *Metrics) EvolutionSeries(window int) iter.Seq[models.EvolutionPoint] {
	return func(yield func(models.EvolutionPoint) bool) {
		if window <= 0 {
			return
		}
		start := len(m.responses) - window
		if start < 0 {
			start = 0
		}
		for i, r := range m.responses[start:] {
			if !yield(models.EvolutionPoint{X: i + 1, Y: ResponseAverage(r)}) {
				return
			}
		}
	}
}

// Evolution collects EvolutionSeries into a slice.
func (m *Metrics) Evolution(window int) []models.EvolutionPoint {
	out := []models.EvolutionPoint{}
	for p := range m.EvolutionSeries(window) {
		out = append(out, p)
	}
	return out
}

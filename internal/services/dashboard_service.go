package services

import (
	"sort"
	"strconv"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

// DefaultRecentCount is how many latest responses the dashboard lists.
const DefaultRecentCount = 5

type CategoryScore struct {
	Category models.Category `json:"category"`
	Average  float64         `json:"average"`
	Display  string          `json:"display"`
}

type RecentResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Average   float64   `json:"average"`
	Display   string    `json:"display"`
}

type QuestionStats struct {
	ID        string          `json:"id"`
	Category  models.Category `json:"category"`
	Histogram []int           `json:"histogram"`
	Total     int             `json:"total"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardSummary struct {
	TotalResponses int                     `json:"total_responses"`
	Categories     []CategoryScore         `json:"categories"`
	Overall        float64                 `json:"overall"`
	OverallDisplay string                  `json:"overall_display"`
	Recent         []RecentResponse        `json:"recent"`
	Evolution      []models.EvolutionPoint `json:"evolution"`
	Questions      []QuestionStats         `json:"questions"`
	Timeseries     []DailyCount            `json:"timeseries"`
	Alpha          float64                 `json:"alpha"`
	N              int                     `json:"n"`
}

type DashboardService struct {
	catalog         *Catalog
	store           *ResponseStore
	recentCount     int
	evolutionWindow int
}

func NewDashboardService(catalog *Catalog, store *ResponseStore, recentCount, evolutionWindow int) *DashboardService {
	if recentCount <= 0 {
		recentCount = DefaultRecentCount
	}
	if evolutionWindow <= 0 {
		evolutionWindow = DefaultEvolutionWindow
	}
	return &DashboardService{catalog: catalog, store: store, recentCount: recentCount, evolutionWindow: evolutionWindow}
}

// Summary computes every dashboard figure from a single store snapshot.
func (s *DashboardService) Summary() *DashboardSummary {
	responses := s.store.All()
	m := NewMetrics(s.catalog, responses)

	cats := make([]CategoryScore, 0, len(s.catalog.categories))
	for _, c := range s.catalog.categories {
		avg := m.CategoryAverage(c)
		cats = append(cats, CategoryScore{Category: c, Average: avg, Display: oneDecimal(avg)})
	}
	overall := m.OverallAverage()
	matrix, n := buildAlphaMatrix(s.catalog, responses)

	return &DashboardSummary{
		TotalResponses: len(responses),
		Categories:     cats,
		Overall:        overall,
		OverallDisplay: oneDecimal(overall),
		Recent:         buildRecent(responses, s.recentCount),
		Evolution:      m.Evolution(s.evolutionWindow),
		Questions:      buildQuestionStats(s.catalog, responses),
		Timeseries:     buildTimeseries(responses),
		Alpha:          CronbachAlpha(matrix),
		N:              n,
	}
}

// buildRecent lists the latest responses, newest first.
func buildRecent(responses []models.StoredResponse, count int) []RecentResponse {
	start := len(responses) - count
	if start < 0 {
		start = 0
	}
	out := make([]RecentResponse, 0, len(responses)-start)
	for i := len(responses) - 1; i >= start; i-- {
		r := responses[i]
		avg := ResponseAverage(r)
		out = append(out, RecentResponse{ID: r.ID, CreatedAt: r.CreatedAt, Average: avg, Display: oneDecimal(avg)})
	}
	return out
}

func buildQuestionStats(catalog *Catalog, responses []models.StoredResponse) []QuestionStats {
	out := make([]QuestionStats, 0, catalog.Len())
	for _, q := range catalog.questions {
		st := QuestionStats{ID: q.ID, Category: q.Category, Histogram: make([]int, MaxRating)}
		for _, r := range responses {
			if v, ok := r.Ratings[q.ID]; ok && v >= MinRating && v <= MaxRating {
				st.Histogram[v-1]++
				st.Total++
			}
		}
		out = append(out, st)
	}
	return out
}

// buildAlphaMatrix keeps only responses that answered every question.
func buildAlphaMatrix(catalog *Catalog, responses []models.StoredResponse) ([][]float64, int) {
	matrix := make([][]float64, 0, len(responses))
	for _, r := range responses {
		row := make([]float64, 0, catalog.Len())
		complete := true
		for _, q := range catalog.questions {
			v, ok := r.Ratings[q.ID]
			if !ok {
				complete = false
				break
			}
			row = append(row, float64(v))
		}
		if complete {
			matrix = append(matrix, row)
		}
	}
	return matrix, len(matrix)
}

func buildTimeseries(responses []models.StoredResponse) []DailyCount {
	counts := map[string]int{}
	for _, r := range responses {
		counts[r.CreatedAt.UTC().Format("2006-01-02")]++
	}
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]DailyCount, 0, len(days))
	for _, d := range days {
		out = append(out, DailyCount{Date: d, Count: counts[d]})
	}
	return out
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

package services

import (
	"testing"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

func TestDashboardSummaryEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	sum := NewDashboardService(DefaultCatalog(), store, 0, 0).Summary()
	if sum.TotalResponses != 0 || sum.Overall != 0 || sum.OverallDisplay != "0.0" {
		t.Fatalf("unexpected empty summary %+v", sum)
	}
	if len(sum.Categories) != 4 || len(sum.Recent) != 0 || len(sum.Evolution) != 0 {
		t.Fatalf("unexpected collections in empty summary %+v", sum)
	}
	if sum.Alpha != 0 || sum.N != 0 {
		t.Fatalf("alpha on empty store: %f/%d", sum.Alpha, sum.N)
	}
}

func TestDashboardSummary(t *testing.T) {
	store, clock := newTestStore(t)
	for i := 0; i < 7; i++ {
		*clock = clock.Add(6 * time.Hour)
		_, _ = store.Append(models.Submission{Ratings: fullRatings(i%5 + 1)})
	}
	_, _ = store.Append(models.Submission{Ratings: models.Ratings{"comunicacao_1": 5}})

	sum := NewDashboardService(DefaultCatalog(), store, 5, 3).Summary()
	if sum.TotalResponses != 8 {
		t.Fatalf("total: %d", sum.TotalResponses)
	}
	if len(sum.Recent) != 5 || sum.Recent[0].ID != "r08" || sum.Recent[4].ID != "r04" {
		t.Fatalf("recent should list r08..r04 newest first: %+v", sum.Recent)
	}
	if sum.Recent[0].Display != "5.0" {
		t.Fatalf("recent display: %q", sum.Recent[0].Display)
	}
	if len(sum.Evolution) != 3 || sum.Evolution[2].X != 3 || sum.Evolution[2].Y != 5 {
		t.Fatalf("evolution window of 3: %+v", sum.Evolution)
	}
	if sum.N != 7 {
		t.Fatalf("alpha should use the 7 complete responses, got %d", sum.N)
	}
	if sum.Alpha < 0.999 {
		t.Fatalf("identical ratings per response give alpha 1, got %f", sum.Alpha)
	}

	q := sum.Questions[0]
	if q.ID != "comunicacao_1" || q.Total != 8 || q.Histogram[4] != 2 {
		t.Fatalf("histogram of comunicacao_1: %+v", q)
	}
	total := 0
	for _, d := range sum.Timeseries {
		total += d.Count
	}
	if total != 8 || len(sum.Timeseries) < 2 || sum.Timeseries[0].Date > sum.Timeseries[1].Date {
		t.Fatalf("timeseries: %+v", sum.Timeseries)
	}
	for _, c := range sum.Categories {
		if c.Display != oneDecimal(c.Average) {
			t.Fatalf("display mismatch for %s", c.Category)
		}
	}
}

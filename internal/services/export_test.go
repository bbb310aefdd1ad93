package services

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func TestExportLongCSV(t *testing.T) {
	rows := []LongRow{
		{ResponseID: "R1", QuestionID: "comunicacao_1", Category: "comunicacao", Rating: 4, CreatedAt: "2024-01-01T00:00:00Z"},
		{ResponseID: "R1", QuestionID: "lideranca_1", Category: "lideranca", Rating: 5, CreatedAt: "2024-01-01T00:00:00Z"},
		{ResponseID: "R2", QuestionID: "comunicacao_1", Category: "comunicacao", Rating: 1, CreatedAt: "2024-01-02T00:00:00Z"},
	}
	b, err := ExportLongCSV(rows)
	if err != nil {
		t.Fatalf("export long: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 1+len(rows) {
		t.Fatalf("want %d rows, got %d", 1+len(rows), len(recs))
	}
	if got := strings.Join(recs[0], ","); got != "response_id,question_id,category,rating,created_at" {
		t.Fatalf("bad header: %s", got)
	}
	if strings.Join(recs[3], ",") != "R2,comunicacao_1,comunicacao,1,2024-01-02T00:00:00Z" {
		t.Fatalf("bad row: %v", recs[3])
	}
}

func TestExportWideCSV(t *testing.T) {
	qs := DefaultQuestions()[:2]
	rs := []models.StoredResponse{
		{ID: "R1", Ratings: models.Ratings{"comunicacao_1": 2, "comunicacao_2": 5}, ImprovementText: "a, b", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "R2", Ratings: models.Ratings{"comunicacao_1": 4}, GoodPointsText: "team", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	b, err := ExportWideCSV(qs, rs)
	if err != nil {
		t.Fatalf("export wide: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 1+len(rs) {
		t.Fatalf("rows mismatch: %d", len(recs))
	}
	if strings.Join(recs[0], ",") != "response_id,created_at,comunicacao_1,comunicacao_2,average,improvement,good_points" {
		t.Fatalf("header mismatch: %v", recs[0])
	}
	if recs[1][4] != "3.50" || recs[1][5] != "a, b" {
		t.Fatalf("R1 wrong: %v", recs[1])
	}
	if recs[2][3] != "" || recs[2][4] != "4.00" || recs[2][6] != "team" {
		t.Fatalf("R2 wrong: %v", recs[2])
	}
}

func TestBuildLongRowsSkipsUnanswered(t *testing.T) {
	rows := buildLongRows(DefaultCatalog(), []models.StoredResponse{
		{ID: "R1", Ratings: models.Ratings{"desenvolvimento_2": 3, "comunicacao_1": 1}},
	})
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].QuestionID != "comunicacao_1" || rows[1].QuestionID != "desenvolvimento_2" {
		t.Fatalf("rows should follow catalog order: %+v", rows)
	}
}

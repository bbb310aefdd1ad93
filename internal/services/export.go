package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/soaringjerry/clima/internal/models"
)

type LongRow struct {
	ResponseID string
	QuestionID string
	Category   string
	Rating     int
	CreatedAt  string // RFC3339
}

// ExportLongCSV renders one row per answered question.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"response_id", "question_id", "category", "rating", "created_at"})
	for _, r := range rows {
		rec := []string{
			r.ResponseID,
			r.QuestionID,
			r.Category,
			strconv.Itoa(r.Rating),
			r.CreatedAt,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportWideCSV renders one row per response with a column per question in
// catalog order followed by the response average and both comments.
// Unanswered questions are left blank.
func ExportWideCSV(questions []models.Question, responses []models.StoredResponse) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := make([]string, 0, len(questions)+5)
	header = append(header, "response_id", "created_at")
	for _, q := range questions {
		header = append(header, q.ID)
	}
	header = append(header, "average", "improvement", "good_points")
	_ = w.Write(header)
	for _, r := range responses {
		row := make([]string, 0, len(header))
		row = append(row, r.ID, r.CreatedAt.UTC().Format(time.RFC3339))
		for _, q := range questions {
			if v, ok := r.Ratings[q.ID]; ok {
				row = append(row, strconv.Itoa(v))
			} else {
				row = append(row, "")
			}
		}
		row = append(row,
			strconv.FormatFloat(ResponseAverage(r), 'f', 2, 64),
			r.ImprovementText,
			r.GoodPointsText,
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func buildLongRows(catalog *Catalog, rs []models.StoredResponse) []LongRow {
	out := make([]LongRow, 0, len(rs)*catalog.Len())
	for _, r := range rs {
		created := r.CreatedAt.UTC().Format(time.RFC3339)
		for _, q := range catalog.questions {
			v, ok := r.Ratings[q.ID]
			if !ok {
				continue
			}
			out = append(out, LongRow{ResponseID: r.ID, QuestionID: q.ID, Category: string(q.Category), Rating: v, CreatedAt: created})
		}
	}
	return out
}

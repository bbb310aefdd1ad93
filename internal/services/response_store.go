package services

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/clima/internal/models"
)

// ResponseStore is the append-only, insertion-ordered collection of accepted
// responses. Writers are serialized; readers always get a copy of a
// consistent state.
type ResponseStore struct {
	catalog     *Catalog
	now         func() time.Time
	idGenerator func() string

	mu        sync.RWMutex
	responses []models.StoredResponse
}

// NewResponseStore constructs an empty store validating against catalog.
func NewResponseStore(catalog *Catalog) *ResponseStore {
	return &ResponseStore{
		catalog:     catalog,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: uuid.NewString,
	}
}

// Append validates sub and stores it with a fresh id and a timestamp no
// earlier than any timestamp already stored.
func (s *ResponseStore) Append(sub models.Submission) (models.StoredResponse, error) {
	if err := s.catalog.validateRatings(sub.Ratings); err != nil {
		return models.StoredResponse{}, err
	}
	rec := models.StoredResponse{
		ID:              s.idGenerator(),
		Ratings:         sub.Ratings.Clone(),
		ImprovementText: sub.ImprovementText,
		GoodPointsText:  sub.GoodPointsText,
	}
	if rec.Ratings == nil {
		rec.Ratings = models.Ratings{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CreatedAt = s.now()
	if n := len(s.responses); n > 0 && rec.CreatedAt.Before(s.responses[n-1].CreatedAt) {
		rec.CreatedAt = s.responses[n-1].CreatedAt
	}
	s.responses = append(s.responses, rec)
	return rec.Clone(), nil
}

// All returns every response in insertion order.
func (s *ResponseStore) All() []models.StoredResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneResponses(s.responses)
}

// Recent returns the last n responses, oldest of the window first.
func (s *ResponseStore) Recent(n int) []models.StoredResponse {
	if n <= 0 {
		return []models.StoredResponse{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := len(s.responses) - n
	if start < 0 {
		start = 0
	}
	return cloneResponses(s.responses[start:])
}

func (s *ResponseStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.responses)
}

// Clear drops every response. Clearing an empty store is not an error.
func (s *ResponseStore) Clear() {
	s.mu.Lock()
	s.responses = nil
	s.mu.Unlock()
}

// ReplaceAll swaps the whole collection for snapshot. Every record is
// validated like Append; one bad record rejects the snapshot and leaves the
// store untouched. Ids and timestamps present in the snapshot are kept;
// missing ones are assigned.
func (s *ResponseStore) ReplaceAll(snapshot []models.StoredResponse) error {
	now := s.now()
	next := make([]models.StoredResponse, 0, len(snapshot))
	seen := make(map[string]struct{}, len(snapshot))
	for i, rec := range snapshot {
		if err := s.catalog.validateRatings(rec.Ratings); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = "snapshot[" + strconv.Itoa(i) + "]." + ve.Field
			}
			return err
		}
		rec = rec.Clone()
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = s.idGenerator()
		}
		if _, dup := seen[rec.ID]; dup {
			return newValidationError("snapshot["+strconv.Itoa(i)+"].id", "duplicate response id %q", rec.ID)
		}
		seen[rec.ID] = struct{}{}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		if rec.Ratings == nil {
			rec.Ratings = models.Ratings{}
		}
		next = append(next, rec)
	}

	s.mu.Lock()
	s.responses = next
	s.mu.Unlock()
	return nil
}

func cloneResponses(in []models.StoredResponse) []models.StoredResponse {
	out := make([]models.StoredResponse, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// ParseRatings converts raw JSON numbers into Ratings. Non-integer values and
// values outside [1,5] are rejected.
func ParseRatings(raw map[string]json.Number) (models.Ratings, error) {
	out := make(models.Ratings, len(raw))
	for id, num := range raw {
		f, err := num.Float64()
		if err != nil {
			return nil, newValidationError("ratings."+id, "rating %q is not a number", num.String())
		}
		if f != math.Trunc(f) {
			return nil, newValidationError("ratings."+id, "rating %s is not an integer", num.String())
		}
		if f < MinRating || f > MaxRating {
			return nil, newValidationError("ratings."+id, "rating %s out of range [%d,%d]", num.String(), MinRating, MaxRating)
		}
		out[id] = int(f)
	}
	return out, nil
}

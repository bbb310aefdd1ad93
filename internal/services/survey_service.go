package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/models"
	"github.com/soaringjerry/clima/internal/observability"
)

// SurveyOptions tunes the submission workflow.
type SurveyOptions struct {
	// RequireComplete rejects submissions that leave any question unanswered.
	// The store itself accepts partial responses either way.
	RequireComplete bool
}

// SurveyService ties the in-memory response store to its snapshot backend.
// The in-memory store is authoritative for the running process; a failed
// save is reported but never rolls back the change.
type SurveyService struct {
	catalog *Catalog
	store   *ResponseStore
	persist SnapshotStore
	log     *zap.Logger
	opts    SurveyOptions

	saveMu sync.Mutex
}

func NewSurveyService(catalog *Catalog, store *ResponseStore, persist SnapshotStore, log *zap.Logger, opts SurveyOptions) *SurveyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SurveyService{catalog: catalog, store: store, persist: persist, log: log, opts: opts}
}

func (s *SurveyService) Catalog() *Catalog { return s.catalog }

// Restore loads the persisted snapshot once at startup. Any failure leaves
// the store empty and is only logged. A snapshot that was read but could not
// be accepted is backed up first when the backend supports it.
func (s *SurveyService) Restore(ctx context.Context) int {
	if s.persist == nil {
		return 0
	}
	snapshot, err := s.persist.Load(ctx)
	if err != nil {
		s.log.Warn("load snapshot failed, starting empty", zap.Error(err))
		s.store.Clear()
		if errors.Is(err, ErrValidation) {
			s.backupSnapshot(ctx)
		}
		return 0
	}
	if err := s.store.ReplaceAll(snapshot); err != nil {
		s.log.Warn("stored snapshot rejected, starting empty", zap.Error(err))
		s.store.Clear()
		s.backupSnapshot(ctx)
		return 0
	}
	n := s.store.Len()
	observability.StoredResponses.Set(float64(n))
	s.log.Info("snapshot restored", zap.Int("responses", n))
	return n
}

func (s *SurveyService) backupSnapshot(ctx context.Context) {
	b, ok := s.persist.(SnapshotBackup)
	if !ok {
		s.log.Warn("snapshot backend cannot keep a backup; the next save replaces it")
		return
	}
	where, err := b.Backup(ctx)
	if err != nil {
		s.log.Error("backup of rejected snapshot failed", zap.Error(err))
		return
	}
	if where != "" {
		s.log.Warn("rejected snapshot backed up", zap.String("backup", where))
	}
}

// Submit validates and appends one response, then persists the collection.
// On a persistence failure the stored record is still returned together with
// a *PersistenceError.
func (s *SurveyService) Submit(ctx context.Context, sub models.Submission) (models.StoredResponse, error) {
	sub.ImprovementText = strings.TrimSpace(sub.ImprovementText)
	sub.GoodPointsText = strings.TrimSpace(sub.GoodPointsText)
	if s.opts.RequireComplete && !s.catalog.Complete(sub.Ratings) {
		observability.SubmissionsRejected.WithLabelValues("incomplete").Inc()
		return models.StoredResponse{}, newValidationError("ratings", "all %d questions must be answered", s.catalog.Len())
	}
	rec, err := s.store.Append(sub)
	if err != nil {
		observability.SubmissionsRejected.WithLabelValues("invalid").Inc()
		return models.StoredResponse{}, err
	}
	observability.SubmissionsAccepted.Inc()
	s.log.Debug("response stored", zap.String("id", rec.ID), zap.Int("answered", len(rec.Ratings)))
	if err := s.save(ctx, "append"); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *SurveyService) Responses() []models.StoredResponse { return s.store.All() }

func (s *SurveyService) Recent(n int) []models.StoredResponse { return s.store.Recent(n) }

// Clear empties the collection and persists the empty snapshot.
func (s *SurveyService) Clear(ctx context.Context) error {
	s.store.Clear()
	s.log.Info("responses cleared")
	return s.save(ctx, "clear")
}

// Import replaces the collection with an exported JSON snapshot.
func (s *SurveyService) Import(ctx context.Context, data []byte) (int, error) {
	snapshot, err := UnmarshalSnapshot(data)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceAll(snapshot); err != nil {
		return 0, err
	}
	n := s.store.Len()
	s.log.Info("snapshot imported", zap.Int("responses", n))
	return n, s.save(ctx, "import")
}

func (s *SurveyService) save(ctx context.Context, op string) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	snapshot := s.store.All()
	observability.StoredResponses.Set(float64(len(snapshot)))
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Save(ctx, snapshot); err != nil {
		observability.SnapshotSaves.WithLabelValues("error").Inc()
		s.log.Error("save snapshot failed", zap.String("op", op), zap.Error(err))
		return &PersistenceError{Op: op, Err: err}
	}
	observability.SnapshotSaves.WithLabelValues("ok").Inc()
	return nil
}

package services

import (
	"encoding/json"
	"fmt"
	"time"

	"apexparts/catalogd/internal/common"
	"apexparts/catalogd/internal/models/dtos"

	"github.com/google/uuid"
)

// reviewTTL bounds how long a computed diff stays applicable. A stale diff
// must be recomputed rather than applied against a store that may have moved.
const reviewTTL = 30 * time.Minute

// stateTransitions is the caller-facing import state machine.
var stateTransitions = map[dtos.ReviewState][]dtos.ReviewState{
	dtos.StateReviewing: {dtos.StateExecuting},
	dtos.StateExecuting: {dtos.StateSucceeded, dtos.StateFailed},
	dtos.StateSucceeded: {dtos.StateRolledBack},
}

// ReviewService holds computed diffs between the diff endpoint and the apply
// endpoint, keyed by review id. Sessions live behind the cache interface so
// multi-node deployments can back them with Redis.
type ReviewService struct {
	cache common.CacheInterface
}

func NewReviewService(cache common.CacheInterface) *ReviewService {
	return &ReviewService{cache: cache}
}

func reviewKey(id string) string {
	return "catalogd:review:" + id
}

// Create stores a freshly computed diff as a session awaiting review.
func (s *ReviewService) Create(file dtos.FileMeta, diff *dtos.DiffResult, validation *dtos.ValidationResult) *dtos.ReviewSession {
	session := &dtos.ReviewSession{
		ID:         uuid.New().String(),
		State:      dtos.StateReviewing,
		File:       file,
		Diff:       diff,
		Validation: validation,
		CreatedAt:  time.Now().UTC(),
	}
	s.cache.Set(reviewKey(session.ID), session, reviewTTL)
	return session
}

// Get fetches a session. Expired or unknown ids return ErrReviewNotFound.
func (s *ReviewService) Get(id string) (*dtos.ReviewSession, error) {
	raw, found := s.cache.Get(reviewKey(id))
	if !found {
		return nil, ErrReviewNotFound
	}
	return decodeSession(raw)
}

// Transition moves a session to the next state, enforcing the machine:
// reviewing -> executing -> succeeded|failed, succeeded -> rolled_back.
func (s *ReviewService) Transition(id string, next dtos.ReviewState, stage dtos.ImportStage, importID string) (*dtos.ReviewSession, error) {
	session, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(session.State, next) {
		return nil, fmt.Errorf("review %s: illegal transition %s -> %s", id, session.State, next)
	}

	session.State = next
	session.Stage = stage
	if importID != "" {
		session.ImportID = importID
	}
	s.cache.Set(reviewKey(id), session, reviewTTL)
	return session, nil
}

// SetStage records apply progress without changing state, so a caller can
// tell where a long-running operation currently stands.
func (s *ReviewService) SetStage(id string, stage dtos.ImportStage) {
	session, err := s.Get(id)
	if err != nil {
		return
	}
	session.Stage = stage
	s.cache.Set(reviewKey(id), session, reviewTTL)
}

func transitionAllowed(from, to dtos.ReviewState) bool {
	for _, allowed := range stateTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// decodeSession handles both cache backends: the in-memory cache hands back
// the typed pointer, the Redis cache hands back generic JSON.
func decodeSession(raw interface{}) (*dtos.ReviewSession, error) {
	if session, ok := raw.(*dtos.ReviewSession); ok {
		return session, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decode review session: %w", err)
	}
	var session dtos.ReviewSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode review session: %w", err)
	}
	return &session, nil
}

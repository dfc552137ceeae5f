package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// QuestionSessionStore remembers which questions were served to a user for a
// course test so that submission scores exactly that set.
type QuestionSessionStore struct {
	helper *CacheHelper
}

func NewQuestionSessionStore(cm *CacheManager) *QuestionSessionStore {
	return &QuestionSessionStore{helper: cm.Session}
}

type servedSession struct {
	QuestionIDs []uint    `json:"question_ids"`
	StartedAt   time.Time `json:"started_at"`
}

func sessionKey(userID string, courseID uint) string {
	return fmt.Sprintf("course:%d:user:%s", courseID, userID)
}

// Save records the served question ids. Without redis this is a no-op.
func (s *QuestionSessionStore) Save(ctx context.Context, userID string, courseID uint, questionIDs []uint, startedAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = SessionCacheConfig.TTL
	}
	return s.helper.Set(ctx, sessionKey(userID, courseID), servedSession{
		QuestionIDs: questionIDs,
		StartedAt:   startedAt,
	}, ttl)
}

// Load returns the served ids and true, or false when nothing is recorded or
// the cache cannot be reached.
func (s *QuestionSessionStore) Load(ctx context.Context, userID string, courseID uint) ([]uint, bool, error) {
	var session servedSession
	err := s.helper.Get(ctx, sessionKey(userID, courseID), &session)
	switch {
	case err == nil:
		return session.QuestionIDs, len(session.QuestionIDs) > 0, nil
	case errors.Is(err, ErrCacheNotFound), errors.Is(err, ErrCacheNotAvailable):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func (s *QuestionSessionStore) Clear(ctx context.Context, userID string, courseID uint) {
	SafeDelete(ctx, s.helper, sessionKey(userID, courseID))
}

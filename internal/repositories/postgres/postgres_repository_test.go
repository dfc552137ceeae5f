package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm/clause"

	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/cache"
	"github.com/000Jasurbek000/Yosh-Tadqiqotchi/internal/models"
)

func newTestCache(t *testing.T) (*cache.CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewCacheManager(client), mr
}

func TestCacheScope_InvalidationWaitsForCommit(t *testing.T) {
	ctx := context.Background()
	cm, mr := newTestCache(t)
	key := cm.TestSet.GetCacheKey(cache.TestSetQuestionsKey(7))

	seed := func() {
		if err := cm.TestSet.Set(ctx, cache.TestSetQuestionsKey(7), []string{"old"}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	t.Run("outside transaction", func(t *testing.T) {
		seed()
		repo := &testSetPostgreSQL{cache: newCacheScope(cm)}
		repo.invalidateQuestions(ctx, 7)
		if mr.Exists(key) {
			t.Error("key should be dropped immediately")
		}
	})

	t.Run("inside transaction", func(t *testing.T) {
		seed()
		scope := newTxCacheScope(cm)
		repo := &testSetPostgreSQL{cache: scope}
		repo.invalidateQuestions(ctx, 7)
		if !mr.Exists(key) {
			t.Fatal("key dropped before commit")
		}
		if scope.readThrough() {
			t.Error("reads inside a transaction must bypass the cache")
		}

		scope.flush(ctx)
		if mr.Exists(key) {
			t.Error("key should be dropped after commit")
		}
	})

	t.Run("flush survives cancelled context", func(t *testing.T) {
		seed()
		scope := newTxCacheScope(cm)
		(&testSetPostgreSQL{cache: scope}).invalidateQuestions(ctx, 7)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		scope.flush(cancelled)
		if mr.Exists(key) {
			t.Error("invalidation skipped on a cancelled request context")
		}
	})
}

func exprSQL(t *testing.T, v interface{}) (string, []interface{}) {
	t.Helper()
	expr, ok := v.(clause.Expr)
	if !ok {
		t.Fatalf("assignment %v is %T, want clause.Expr", v, v)
	}
	return expr.SQL, expr.Vars
}

func TestProgressAssignments_OnlyRaiseFlags(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	score := 20

	course := courseProgressAssignments(&models.UserCourseProgress{TestScore: &score})
	for column, want := range map[string]string{
		"test_passed":  "test_passed OR ?",
		"is_completed": "is_completed OR ?",
		"completed_at": "COALESCE(completed_at, ?)",
	} {
		if sql, _ := exprSQL(t, course[column]); sql != want {
			t.Errorf("course %s = %q, want %q", column, sql, want)
		}
	}
	if got, ok := course["test_score"].(*int); !ok || *got != 20 {
		t.Errorf("test_score = %v, want the latest score", course["test_score"])
	}

	module := moduleProgressAssignments(&models.UserModuleProgress{WatchedVideo: true, CompletedAt: &now})
	for _, column := range []string{"viewed_presentation", "watched_video", "is_completed"} {
		sql, vars := exprSQL(t, module[column])
		if sql != column+" OR ?" {
			t.Errorf("module %s = %q", column, sql)
		}
		if column == "watched_video" && (len(vars) != 1 || vars[0] != true) {
			t.Errorf("watched_video vars = %v, want [true]", vars)
		}
	}
	if sql, vars := exprSQL(t, module["completed_at"]); sql != "COALESCE(completed_at, ?)" || vars[0] != &now {
		t.Errorf("completed_at = %q %v", sql, vars)
	}
}

func TestAssessmentAssignments_NeverDemote(t *testing.T) {
	next := time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:                    "u1",
		Status:                models.StatusRegular,
		AssessmentStatus:      models.StatusRegular,
		AssessmentNextAttempt: &next,
	}

	set := assessmentAssignments(user)
	for _, column := range []string{"status", "assessment_status"} {
		sql, vars := exprSQL(t, set[column])
		want := "CASE WHEN " + column + " = ? THEN " + column + " ELSE ? END"
		if sql != want {
			t.Errorf("%s = %q, want %q", column, sql, want)
		}
		if len(vars) != 2 || vars[0] != models.StatusTalented || vars[1] != models.StatusRegular {
			t.Errorf("%s vars = %v", column, vars)
		}
	}
	if got, ok := set["assessment_next_attempt"].(*time.Time); !ok || !got.Equal(next) {
		t.Errorf("assessment_next_attempt = %v, want %v", set["assessment_next_attempt"], next)
	}
}

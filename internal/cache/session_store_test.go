package cache

import (
	"context"
	"testing"
	"time"
)

func TestQuestionSessionStore(t *testing.T) {
	cm, mr := newTestManager(t)
	store := NewQuestionSessionStore(cm)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if _, ok, err := store.Load(ctx, "u1", 5); err != nil || ok {
		t.Fatalf("Load() before Save = ok %v err %v, want false nil", ok, err)
	}

	if err := store.Save(ctx, "u1", 5, []uint{7, 3, 9}, now, 10*time.Minute); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	ids, ok, err := store.Load(ctx, "u1", 5)
	if err != nil || !ok {
		t.Fatalf("Load() = ok %v err %v", ok, err)
	}
	if len(ids) != 3 || ids[0] != 7 || ids[1] != 3 || ids[2] != 9 {
		t.Errorf("Load() ids = %v, want [7 3 9]", ids)
	}

	// another user or course does not see the set
	if _, ok, _ := store.Load(ctx, "u2", 5); ok {
		t.Error("Load() for other user should miss")
	}
	if _, ok, _ := store.Load(ctx, "u1", 6); ok {
		t.Error("Load() for other course should miss")
	}

	mr.FastForward(11 * time.Minute)
	if _, ok, _ := store.Load(ctx, "u1", 5); ok {
		t.Error("Load() after ttl should miss")
	}
}

func TestQuestionSessionStore_Clear(t *testing.T) {
	cm, _ := newTestManager(t)
	store := NewQuestionSessionStore(cm)
	ctx := context.Background()

	if err := store.Save(ctx, "u1", 1, []uint{1}, time.Now(), time.Minute); err != nil {
		t.Fatal(err)
	}
	store.Clear(ctx, "u1", 1)
	if _, ok, _ := store.Load(ctx, "u1", 1); ok {
		t.Error("Load() after Clear should miss")
	}
}

func TestQuestionSessionStore_WithoutRedis(t *testing.T) {
	store := NewQuestionSessionStore(NewCacheManager(nil))
	ctx := context.Background()

	if err := store.Save(ctx, "u1", 1, []uint{1, 2}, time.Now(), time.Minute); err != nil {
		t.Fatalf("Save() without redis error = %v", err)
	}
	if _, ok, err := store.Load(ctx, "u1", 1); ok || err != nil {
		t.Errorf("Load() without redis = ok %v err %v, want false nil", ok, err)
	}
}

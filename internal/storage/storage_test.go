package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDiskStore_RoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}
	ctx := context.Background()

	key := "certificates/certificate_u1_3_20260101.pdf"
	if err := store.Put(ctx, key, []byte("%PDF-1.3"), "application/pdf"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "%PDF-1.3" {
		t.Errorf("Get() = %q", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrObjectNotFound", err)
	}
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())
	if err := store.Put(context.Background(), "../escape.txt", []byte("x"), ""); err == nil {
		t.Error("Put() accepted a key leaving the root")
	}
}

func TestDiskStore_MissingIsNotFound(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())
	if _, err := store.Get(context.Background(), "profiles/nobody.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("error = %v, want ErrObjectNotFound", err)
	}
}

package token

import (
	"context"
	"errors"
	"testing"

	"github.com/aanand-mishra/ugs-portal/internal/storage/memory"
)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	student := NewStore(backend, "p1", StudentKey)
	admin := NewStore(backend, "p1", AdminKey)

	if _, ok, err := student.Get(ctx); ok || err != nil {
		t.Fatalf("expected no token, got ok=%v err=%v", ok, err)
	}

	if err := student.Set(ctx, "t1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if tok, ok, _ := student.Get(ctx); !ok || tok != "t1" {
		t.Fatalf("expected t1, got %q ok=%v", tok, ok)
	}
	if _, ok, _ := admin.Get(ctx); ok {
		t.Fatalf("admin tier must not see the student token")
	}

	if err := student.Remove(ctx); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok, _ := student.Get(ctx); ok {
		t.Fatalf("expected token to be removed")
	}
}

func TestSetRejectsEmptyToken(t *testing.T) {
	s := NewStore(memory.New(), "p1", StudentKey)
	if err := s.Set(context.Background(), ""); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}

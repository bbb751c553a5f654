package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *SQLite {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "nested", "portal.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetRemove(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, ok, err := s.GetItem(ctx, "p1", "auth_token"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.SetItem(ctx, "p1", "auth_token", "t1"); err != nil {
		t.Fatalf("SetItem() error = %v", err)
	}
	if err := s.SetItem(ctx, "p1", "auth_token", "t2"); err != nil {
		t.Fatalf("SetItem() overwrite error = %v", err)
	}

	value, ok, err := s.GetItem(ctx, "p1", "auth_token")
	if err != nil || !ok || value != "t2" {
		t.Fatalf("expected t2, got %q ok=%v err=%v", value, ok, err)
	}

	if err := s.RemoveItem(ctx, "p1", "auth_token"); err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if _, ok, _ := s.GetItem(ctx, "p1", "auth_token"); ok {
		t.Fatalf("expected key to be removed")
	}
	if err := s.RemoveItem(ctx, "p1", "auth_token"); err != nil {
		t.Fatalf("removing an absent key should not fail: %v", err)
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_ = s.SetItem(ctx, "p1", "auth_token", "a")
	_ = s.SetItem(ctx, "p2", "auth_token", "b")
	_ = s.SetItem(ctx, "p1", "admin_auth_token", "c")

	cases := []struct{ profile, key, want string }{
		{"p1", "auth_token", "a"},
		{"p2", "auth_token", "b"},
		{"p1", "admin_auth_token", "c"},
	}
	for _, tc := range cases {
		got, ok, err := s.GetItem(ctx, tc.profile, tc.key)
		if err != nil || !ok || got != tc.want {
			t.Fatalf("%s/%s: expected %q, got %q ok=%v err=%v", tc.profile, tc.key, tc.want, got, ok, err)
		}
	}
}

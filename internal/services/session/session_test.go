package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cafeteria/internal/models"
)

func TestNew_DerivesRole(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want models.Role
	}{
		{"admin flag", models.User{IsAdmin: true}, models.RoleAdmin},
		{"cook status", models.User{Status: "Cook"}, models.RoleCook},
		{"student", models.User{Status: "active"}, models.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("tok", tt.user)
			if s.Role != tt.want || s.User == nil || !s.Valid() {
				t.Fatalf("session = %+v, want role %s", s, tt.want)
			}
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load on empty store = %v, want ErrNoSession", err)
	}

	saved := New("tok-1", models.User{ID: 7, Name: "Ann", Email: "ann@students.sch2.ru"})
	if err := store.Save(ctx, saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Token != "tok-1" || loaded.Role != models.RoleStudent || loaded.User == nil || loaded.User.ID != 7 {
		t.Fatalf("loaded = %+v", loaded)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load after Clear = %v, want ErrNoSession", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(path).Load(context.Background())
	if err == nil || errors.Is(err, ErrNoSession) {
		t.Fatalf("Load = %v, want parse error", err)
	}
}

func TestFileStore_EmptyTokenIsNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"token":"","role":"student"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path).Load(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Load = %v, want ErrNoSession", err)
	}
}

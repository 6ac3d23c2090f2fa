package store

import (
	"context"
	"testing"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "a@x.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Errorf("expected email 'a@x.com', got %q", user.Email)
	}

	got, err := s.GetUserByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("unexpected user: %+v", got)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "a@x.com", "hash"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := s.CreateUser(ctx, "a@x.com", "other"); err != ErrEmailTaken {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGetUserByEmailUnknown(t *testing.T) {
	s := newTestStore(t)

	user, err := s.GetUserByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil, got %+v", user)
	}
}

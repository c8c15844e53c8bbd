package service

import (
	"context"
	"errors"
	"testing"

	"app/internal/model"
	"app/internal/repository"
)

func TestCreateUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo)

	u, err := svc.Create(context.Background(), &model.User{UserID: "u1", Email: "a@b.c"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if u.UserID != "u1" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if repo.users["u1"] == nil {
		t.Fatal("expected user to be persisted")
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = repository.ErrDuplicateEmail
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), &model.User{UserID: "u1", Email: "a@b.c"})
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewUserService(newStubUserRepo())
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetByEmail(context.Background(), "nope@b.c"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newStubUserRepo(&model.User{UserID: "u1", Email: "a@b.c"})
	svc := NewUserService(repo)

	u, err := svc.UpdateProfile(context.Background(), "u1", "Alex", "123", "Paris")
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if u.Name != "Alex" || u.Locality != "Paris" {
		t.Fatalf("profile not updated: %+v", u)
	}
}

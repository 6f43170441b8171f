package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithIdentity_IdentityFromCtx(t *testing.T) {
	want := Identity{UserID: uuid.New(), Username: "alice"}
	ctx := WithIdentity(context.Background(), want)

	got, err := IdentityFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	userID, err := UserIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != want.UserID {
		t.Fatalf("expected %v, got %v", want.UserID, userID)
	}
}

func TestIdentityFromCtx_EmptyContext(t *testing.T) {
	_, err := IdentityFromCtx(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := UserIDFromCtx(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated from UserIDFromCtx, got %v", err)
	}
}

func TestIdentityFromCtx_NilUUID(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: uuid.Nil, Username: "ghost"})
	_, err := IdentityFromCtx(ctx)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for uuid.Nil, got %v", err)
	}
}

func TestIdentityFromCtx_Isolation(t *testing.T) {
	id1 := Identity{UserID: uuid.New(), Username: "alice"}
	id2 := Identity{UserID: uuid.New(), Username: "bob"}

	ctx1 := WithIdentity(context.Background(), id1)
	ctx2 := WithIdentity(context.Background(), id2)

	got1, _ := IdentityFromCtx(ctx1)
	got2, _ := IdentityFromCtx(ctx2)

	if got1 != id1 {
		t.Fatalf("ctx1: expected %+v, got %+v", id1, got1)
	}
	if got2 != id2 {
		t.Fatalf("ctx2: expected %+v, got %+v", id2, got2)
	}
}

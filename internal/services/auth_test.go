package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/docvault-backend/internal/data/repos"
	"github.com/yungbote/docvault-backend/internal/data/repos/testutil"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/apierr"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
)

func newAuthTestEnv(t *testing.T) (AuthService, dbctx.Context) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	userSvc := NewUserService(log, userRepo)
	return NewAuthService(log, userSvc, "test-secret", time.Hour), dbctx.New(context.Background())
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, dbc := newAuthTestEnv(t)

	res, err := svc.Register(dbc, CreateUserInput{
		Email:     "Alice@Example.com",
		Password:  "hunter22",
		FirstName: "Alice",
		LastName:  "Smith",
		Role:      types.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if res.User.Role != types.UserRoleUser {
		t.Fatalf("registration must never grant elevated roles, got %q", res.User.Role)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", res.User.Email)
	}
	if res.Token == "" {
		t.Fatalf("expected an access token")
	}

	login, err := svc.Login(dbc, "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != res.User.ID {
		t.Fatalf("login returned a different user")
	}

	_, err = svc.Login(dbc, "alice@example.com", "wrong")
	expectKind(t, err, apierr.KindForbidden)

	// Unknown accounts fail the same way as bad passwords.
	_, err = svc.Login(dbc, "nobody@example.com", "hunter22")
	expectKind(t, err, apierr.KindForbidden)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, dbc := newAuthTestEnv(t)

	input := CreateUserInput{
		Email:     "bob@example.com",
		Password:  "hunter22",
		FirstName: "Bob",
		LastName:  "Jones",
	}
	if _, err := svc.Register(dbc, input); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := svc.Register(dbc, input)
	expectKind(t, err, apierr.KindConflict)
}

func TestAuthService_ParseToken(t *testing.T) {
	svc, dbc := newAuthTestEnv(t)

	res, err := svc.Register(dbc, CreateUserInput{
		Email:     "carol@example.com",
		Password:  "hunter22",
		FirstName: "Carol",
		LastName:  "White",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	rd, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if rd.UserID != res.User.ID || rd.Email != res.User.Email || rd.Role != string(res.User.Role) {
		t.Fatalf("claims do not match user: %+v", rd)
	}

	// A tampered signature must be rejected.
	parts := strings.Split(res.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	_, err = svc.ParseToken(parts[0] + "." + parts[1] + ".AAAA")
	expectKind(t, err, apierr.KindForbidden)

	_, err = svc.ParseToken("not-a-token")
	expectKind(t, err, apierr.KindForbidden)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/lms-backend/internal/data/repos"
	repotest "github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

func newTestAuth(t *testing.T) *authService {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	svc := NewAuthService(db, log, repos.NewUserRepo(db, log), "test-secret", time.Hour).(*authService)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()
	email := uuid.NewString()[:8] + "@Example.com"

	u, err := svc.Register(ctx, RegisterInput{Email: "  " + email, Password: "correct horse", FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != types.RoleStudent || !u.IsActive {
		t.Fatalf("unexpected user: %+v", u)
	}
	if u.Password == "correct horse" {
		t.Fatalf("password stored in clear")
	}

	_, err = svc.Register(ctx, RegisterInput{Email: email, Password: "another pass", FirstName: "A", LastName: "B"})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("duplicate email: expected conflict, got %v", err)
	}

	tok, got, err := svc.Login(ctx, email, "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login user: want=%s got=%s", u.ID, got.ID)
	}
	id, err := svc.IdentityFromToken(ctx, tok)
	if err != nil {
		t.Fatalf("IdentityFromToken: %v", err)
	}
	if id.UserID != u.ID || id.Role != types.RoleStudent {
		t.Fatalf("unexpected identity: %+v", id)
	}

	for _, pw := range []string{"wrong password", ""} {
		if _, _, err := svc.Login(ctx, email, pw); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
			t.Fatalf("bad password %q: expected unauthenticated, got %v", pw, err)
		}
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "correct horse"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("unknown email: expected unauthenticated, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuth(t)
	_, err := svc.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "short", FirstName: " "})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if fields := domainagg.FieldsOf(err); len(fields) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", fields)
	}
}

func TestIdentityFromTokenRejectsBadTokens(t *testing.T) {
	svc := newTestAuth(t)
	ctx := context.Background()
	u := &types.User{ID: uuid.New(), Role: types.RoleTeacher}

	tok, err := svc.generateAccessToken(u)
	if err != nil {
		t.Fatalf("generateAccessToken: %v", err)
	}
	if id, err := svc.IdentityFromToken(ctx, tok); err != nil || id.Role != types.RoleTeacher {
		t.Fatalf("valid token: id=%+v err=%v", id, err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.IdentityFromToken(ctx, tok); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("expired token: expected unauthenticated, got %v", err)
	}
	svc.now = time.Now

	other := NewAuthService(svc.db, svc.log, svc.userRepo, "other-secret", time.Hour).(*authService)
	forged, _ := other.generateAccessToken(u)
	if _, err := svc.IdentityFromToken(ctx, forged); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("foreign signature: expected unauthenticated, got %v", err)
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.String()}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := svc.IdentityFromToken(ctx, unsigned); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("alg none: expected unauthenticated, got %v", err)
	}

	for _, bad := range []string{"", "garbage"} {
		if _, err := svc.IdentityFromToken(ctx, bad); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
			t.Fatalf("token %q: expected unauthenticated, got %v", bad, err)
		}
	}
}

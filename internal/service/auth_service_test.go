package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"titanfit/coach-app/internal/domain"

	"github.com/golang-jwt/jwt/v4"
)

const testJWTSecret = "test-secret"

func TestRegister(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Jordan Coach", "jordan@example.com", "s3cret!", domain.RoleCoach)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID.IsZero() {
		t.Errorf("registered user has no id")
	}
	if user.PasswordHash != "" {
		t.Errorf("password hash leaked in the response")
	}

	stored, err := userRepo.GetByEmail(ctx, "jordan@example.com")
	if err != nil {
		t.Fatalf("stored user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "s3cret!" {
		t.Errorf("password stored in the clear")
	}

	// Duplicate email
	if _, err := svc.Register(ctx, "Other", "jordan@example.com", "pw", domain.RoleClient); !errors.Is(err, ErrUserAlreadyExists) {
		t.Errorf("duplicate register err = %v, want ErrUserAlreadyExists", err)
	}

	// Invalid role
	if _, err := svc.Register(ctx, "Other", "other@example.com", "pw", "admin"); err == nil {
		t.Errorf("unknown role accepted")
	}
}

func TestLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, testJWTSecret, time.Hour)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "Casey Client", "casey@example.com", "correct-horse", domain.RoleClient)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(ctx, "casey@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("login user = %s, want %s", user.ID.Hex(), registered.ID.Hex())
	}
	if user.PasswordHash != "" {
		t.Errorf("password hash leaked in the response")
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != registered.ID.Hex() {
		t.Errorf("claims uid = %q, want %q", claims.UserID, registered.ID.Hex())
	}
	if claims.Role != domain.RoleClient {
		t.Errorf("claims role = %q, want client", claims.Role)
	}
	if claims.Issuer != "coach-app" {
		t.Errorf("claims issuer = %q", claims.Issuer)
	}

	// Wrong password and unknown email both map to the same failure.
	if _, _, err := svc.Login(ctx, "casey@example.com", "wrong"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("wrong password err = %v, want ErrAuthenticationFailed", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "pw"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Errorf("unknown email err = %v, want ErrAuthenticationFailed", err)
	}
}

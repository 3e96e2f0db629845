package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nkashyap/taskhub-backend/internal/apierr"
	"github.com/nkashyap/taskhub-backend/internal/repos"
	"github.com/nkashyap/taskhub-backend/internal/requestdata"
)

func signedTestToken(t *testing.T, secret string, userID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func newTestAuthService(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()
	gormDB := newTestDB(t)
	log := mustTestLogger(t)
	svc := NewAuthService(
		gormDB,
		log,
		repos.NewUserRepo(gormDB, log),
		repos.NewUserTokenRepo(gormDB, log),
		"test-secret",
		time.Hour,
		24*time.Hour,
	)
	return svc, gormDB
}

func TestRegisterLoginVerifyRoundTrip(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, pair, err := svc.RegisterUser(ctx, "alice", "Alice@Example.com", "s3cret")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email should be normalized, got %q", user.Email)
	}
	if pair == nil || pair.AccessToken == "" {
		t.Fatalf("register should issue a token")
	}

	_, loginPair, err := svc.LoginUser(ctx, "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authedCtx, err := svc.SetContextFromToken(ctx, loginPair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authedCtx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("verified identity mismatch: %+v", rd)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.RegisterUser(ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := svc.RegisterUser(ctx, "bob", "other@example.com", "pw"); apierr.StatusOf(err) != 400 {
		t.Fatalf("duplicate username: want 400, got %v", err)
	}
	if _, _, err := svc.RegisterUser(ctx, "bobby", "bob@example.com", "pw"); apierr.StatusOf(err) != 400 {
		t.Fatalf("duplicate email: want 400, got %v", err)
	}
	if _, _, err := svc.RegisterUser(ctx, "", "x@example.com", "pw"); apierr.StatusOf(err) != 400 {
		t.Fatalf("missing username: want 400, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, _, err := svc.RegisterUser(ctx, "carol", "carol@example.com", "right"); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	_, _, unknownErr := svc.LoginUser(ctx, "nobody@example.com", "right")
	_, _, wrongErr := svc.LoginUser(ctx, "carol@example.com", "wrong")
	if apierr.StatusOf(unknownErr) != 400 || apierr.StatusOf(wrongErr) != 400 {
		t.Fatalf("bad credentials must 400: unknown=%v wrong=%v", unknownErr, wrongErr)
	}
	// Unknown email and wrong password must be indistinguishable.
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("credential errors leak which part failed: %q vs %q", unknownErr, wrongErr)
	}
}

func TestVerifyRejectsGarbageAndForgedTokens(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.SetContextFromToken(ctx, token); apierr.StatusOf(err) != 401 {
			t.Fatalf("token %q: want 401, got %v", token, err)
		}
	}

	forged := signedTestToken(t, "attacker-secret", uuid.New(), time.Hour)
	if _, err := svc.SetContextFromToken(ctx, forged); apierr.StatusOf(err) != 401 {
		t.Fatalf("forged token must 401, got %v", err)
	}

	expired := signedTestToken(t, "test-secret", uuid.New(), -time.Hour)
	if _, err := svc.SetContextFromToken(ctx, expired); apierr.StatusOf(err) != 401 {
		t.Fatalf("expired token must 401, got %v", err)
	}
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.RegisterUser(ctx, "dave", "dave@example.com", "pw")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	rotated, err := svc.RefreshUser(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshUser: %v", err)
	}
	if rotated.RefreshToken == pair.RefreshToken {
		t.Fatalf("refresh token should rotate")
	}
	if _, err := svc.RefreshUser(ctx, pair.RefreshToken); apierr.StatusOf(err) != 401 {
		t.Fatalf("old refresh token must be invalid after rotation, got %v", err)
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.RegisterUser(ctx, "erin", "erin@example.com", "pw")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	authedCtx, err := svc.SetContextFromToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := svc.LogoutUser(authedCtx); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}
	if _, err := svc.RefreshUser(ctx, pair.RefreshToken); apierr.StatusOf(err) != 401 {
		t.Fatalf("refresh after logout must 401, got %v", err)
	}
}

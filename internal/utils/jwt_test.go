package utils

import (
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")

	token, tokenID, err := GenerateAccessToken("u-42", "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if tokenID == "" {
		t.Fatal("token_id vide")
	}

	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != "u-42" || claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Errorf("claims inattendus: %+v", claims)
	}
	if claims.TokenID != tokenID {
		t.Errorf("token_id : attendu %q, obtenu %q", tokenID, claims.TokenID)
	}

	if d := GetTokenExpirationDuration(claims); d <= 0 || d > AccessTokenTTL {
		t.Errorf("durée restante hors bornes: %v", d)
	}
}

func TestParseAccessTokenRejectsBadSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret_a")
	token, _, err := GenerateAccessToken("u-1", "a@b.c", "A")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	t.Setenv("JWT_SECRET", "secret_b")
	if _, err := ParseAccessToken(token); err == nil {
		t.Error("un token signé avec un autre secret doit être rejeté")
	}
}

func TestGenerateRefreshTokenUnique(t *testing.T) {
	a, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	b, _ := GenerateRefreshToken()
	if a == b {
		t.Error("deux refresh tokens identiques")
	}
	if len(a) < 40 {
		t.Errorf("token trop court: %d", len(a))
	}
}

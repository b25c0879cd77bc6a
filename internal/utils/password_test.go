package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("format de hash inattendu: %s", hash)
	}

	ok, err := VerifyPassword("s3cret!", hash)
	if err != nil || !ok {
		t.Errorf("le bon mot de passe doit vérifier (ok=%v, err=%v)", ok, err)
	}

	ok, err = VerifyPassword("autre", hash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Error("un mauvais mot de passe ne doit pas vérifier")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, _ := HashPassword("même")
	b, _ := HashPassword("même")
	if a == b {
		t.Error("deux hash du même mot de passe doivent différer (salt aléatoire)")
	}
}

func TestVerifyPasswordRejectsGarbage(t *testing.T) {
	if _, err := VerifyPassword("x", "$2a$10$notargon"); err == nil {
		t.Error("un hash non argon2id doit être rejeté")
	}
}

package password

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPlain(t *testing.T) {
	got, err := New(false, 0).Hash("secret")
	if err != nil || got != "secret" {
		t.Fatalf("Hash = %q, %v", got, err)
	}
}

func TestBcrypt(t *testing.T) {
	h := New(true, bcrypt.MinCost)
	got, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if got == "secret" {
		t.Fatalf("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(got), []byte("secret")); err != nil {
		t.Fatalf("hash does not match: %v", err)
	}
	if cost, _ := bcrypt.Cost([]byte(got)); cost != bcrypt.MinCost {
		t.Fatalf("cost = %d", cost)
	}
}

func TestBcrypt_InvalidCost(t *testing.T) {
	if _, err := (Bcrypt{Cost: 99}).Hash("secret"); err == nil {
		t.Fatalf("expected error for cost above bcrypt.MaxCost")
	}
}

package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secreto123", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "secreto123" {
		t.Fatal("hash equals the plain password")
	}
	if !VerifyPassword(hash, "secreto123") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "otra") {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordLowCostFallsBack(t *testing.T) {
	hash, err := HashPassword("secreto123", 0)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "secreto123") {
		t.Fatal("fallback-cost hash does not verify")
	}
}

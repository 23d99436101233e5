package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hashed, err := HashPassword("S3cret!pass")
	if err != nil {
		t.Fatalf("HashPassword() returned error: %v", err)
	}
	if hashed == "S3cret!pass" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !CheckPassword(hashed, "S3cret!pass") {
		t.Error("correct password should verify")
	}
	if CheckPassword(hashed, "wrong-pass") {
		t.Error("wrong password should not verify")
	}
}

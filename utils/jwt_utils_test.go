package utils

import "testing"

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("6565a0000000000000000001", "ana@example.com", "employee")
	if err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() returned error: %v", err)
	}

	if claims.UserID != "6565a0000000000000000001" {
		t.Errorf("UserID = %q, want the issued ID", claims.UserID)
	}
	if claims.Email != "ana@example.com" {
		t.Errorf("Email = %q, want ana@example.com", claims.Email)
	}
	if claims.Role != "employee" {
		t.Errorf("Role = %q, want employee", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateToken("id", "a@b.c", "admin")
	if err != nil {
		t.Fatalf("GenerateToken() returned error: %v", err)
	}

	t.Setenv("JWT_SECRET", "second-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("garbage token should not validate")
	}
}

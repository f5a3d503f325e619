package utils

import "testing"

type sampleRequest struct {
	Email string `validate:"required,emailok"`
	Name  string `validate:"required,nameok"`
	Note  string
}

func TestValidateStruct_Valid(t *testing.T) {
	req := sampleRequest{Email: "jane@example.com", Name: "Jane O'Neil"}
	if err := ValidateStruct(&req); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidateStruct_MissingRequired(t *testing.T) {
	req := sampleRequest{Name: "Jane"}
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestValidateStruct_BadEmail(t *testing.T) {
	req := sampleRequest{Email: "not-an-email", Name: "Jane"}
	if err := ValidateStruct(&req); err == nil {
		t.Fatal("expected error for malformed email")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org"}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com"}
	for _, s := range valid {
		if !IsValidEmail(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if IsValidEmail(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

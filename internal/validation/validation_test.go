package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aanand-mishra/ugs-portal/internal/types"
)

func TestStructValid(t *testing.T) {
	fields, err := Struct(types.Credentials{Email: "a@b.com", Password: "x"})
	if err != nil || fields != nil {
		t.Fatalf("expected valid credentials, got fields=%v err=%v", fields, err)
	}
}

func TestStructUsesJSONNames(t *testing.T) {
	fields, err := Struct(types.Registration{
		Name:                 "Ada",
		Email:                "not-an-email",
		Password:             "short",
		PasswordConfirmation: "other",
	})
	if err != nil {
		t.Fatalf("Struct() error = %v", err)
	}

	want := map[string][]string{
		"email":                 {"The email must be a valid email address."},
		"password":              {"The password must be at least 8 characters."},
		"password_confirmation": {"The password confirmation does not match."},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("Struct() mismatch (-want +got):\n%s", diff)
	}
}

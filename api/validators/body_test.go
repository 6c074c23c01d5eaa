package validators

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/avilesdev/storefront-backend/pkg/errors"
)

type testPayload struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Priya","email":"priya@example.com"}`))

	var dest testPayload
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("DecodeJSONBody: %v", err)
	}
	if dest.Name != "Priya" {
		t.Fatalf("name = %q", dest.Name)
	}
}

func TestDecodeJSONBodyMissingFieldDetails(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Priya"}`))

	var dest testPayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %T", typed.Details())
	}
	if details["email"] != "is required" {
		t.Fatalf("email detail = %q", details["email"])
	}
}

func TestDecodeJSONBodyEmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(""))

	var dest testPayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
	if typed.Message() != "request body is required" {
		t.Fatalf("message = %q", typed.Message())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"Priya","email":"a@b.com","admin":true}`))

	var dest testPayload
	if err := DecodeJSONBody(req, &dest); err == nil {
		t.Fatalf("expected unknown-field rejection")
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	huge := bytes.Repeat([]byte("a"), maxBodyBytes+1)
	body := `{"name":"` + string(huge) + `","email":"a@b.com"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var dest testPayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("got %v, want validation error", err)
	}
	if typed.Message() != "request body is too large" {
		t.Fatalf("message = %q", typed.Message())
	}
}

package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/dimensionalz-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required,max=8"`
	Count int    `json:"count" validate:"min=0"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","count":1}`))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["name"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","extra":true}`))
	var payload samplePayload
	if err := DecodeJSONBody(req, &payload); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeOptionalJSONBodyAcceptsEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("  "))
	var payload samplePayload
	if err := DecodeOptionalJSONBody(req, &payload); err != nil {
		t.Fatalf("expected empty body to pass, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"rune"}`))
	if err := DecodeOptionalJSONBody(req, &payload); err != nil || payload.Name != "rune" {
		t.Fatalf("expected decode, got %v (%+v)", err, payload)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7", nil)
	if got, err := ParseQueryInt(req, "limit", 25, 1, 100); err != nil || got != 7 {
		t.Fatalf("expected 7, got %d (%v)", got, err)
	}
	if got, _ := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/", nil), "limit", 25, 1, 100); got != 25 {
		t.Fatalf("expected default, got %d", got)
	}
	if _, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=abc", nil), "limit", 25, 1, 100); err == nil {
		t.Fatal("expected numeric error")
	}
	if _, err := ParseQueryInt(httptest.NewRequest(http.MethodGet, "/?limit=500", nil), "limit", 25, 1, 100); err == nil {
		t.Fatal("expected range error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello world  ", 5); got != "hello" {
		t.Fatalf("unexpected %q", got)
	}
}

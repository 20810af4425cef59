package finix

import (
	"errors"
	"testing"
)

func TestNormalizeToken_NestedShape(t *testing.T) {
	raw := map[string]interface{}{
		"data": map[string]interface{}{
			"id":        "TK123",
			"brand":     "VISA",
			"last_four": "4242",
		},
	}
	tok, err := NormalizeToken(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID != "TK123" || tok.Brand != "VISA" || tok.LastFour != "4242" {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestNormalizeToken_FlatShapeDefaults(t *testing.T) {
	tok, err := NormalizeToken(map[string]interface{}{"id": "TK999"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID != "TK999" || tok.Brand != "UNKNOWN" || tok.LastFour != "0000" {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestNormalizeToken_BareString(t *testing.T) {
	tok, err := NormalizeToken("TK_abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID != "TK_abc123" {
		t.Fatalf("unexpected id: %s", tok.ID)
	}
}

func TestNormalizeToken_FieldNameFallbacks(t *testing.T) {
	tok, err := NormalizeToken(map[string]interface{}{
		"id":         "TK42",
		"brand_name": "MASTERCARD",
		"lastFour":   "1111",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Brand != "MASTERCARD" || tok.LastFour != "1111" {
		t.Fatalf("fallback fields not applied: %+v", tok)
	}
}

func TestNormalizeToken_BadPrefix(t *testing.T) {
	_, err := NormalizeToken(map[string]interface{}{"id": "BAD123"})
	if !errors.Is(err, ErrInvalidTokenFormat) {
		t.Fatalf("expected ErrInvalidTokenFormat, got %v", err)
	}
}

func TestNormalizeToken_Nil(t *testing.T) {
	_, err := NormalizeToken(nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

package finix

import (
	"fmt"
	"strings"
)

// NormalizeToken converts the heterogeneous vendor response into the canonical
// PaymentToken shape. Documented input shapes:
//  1. nested object  {data: {id: "TK...", brand?, last_four?}}
//  2. flat object    {id: "TK...", brand?, last_four?}
//  3. bare string    "TK..."
//
// Field-name fallbacks: brand|brand_name, last_four|lastFour|last4.
func NormalizeToken(raw interface{}) (PaymentToken, error) {
	if raw == nil {
		return PaymentToken{}, ErrEmptyResponse
	}

	var (
		id     string
		fields map[string]interface{}
	)

	switch v := raw.(type) {
	case string:
		id = v
	case map[string]interface{}:
		if data, ok := v["data"].(map[string]interface{}); ok {
			fields = data
		} else {
			fields = v
		}
		id, _ = fields["id"].(string)
	case PaymentToken:
		// already canonical; still subject to the prefix check
		id = v.ID
		fields = map[string]interface{}{"brand": v.Brand, "last_four": v.LastFour}
	default:
		return PaymentToken{}, fmt.Errorf("%w: unsupported response type %T", ErrInvalidTokenFormat, raw)
	}

	if id == "" || !strings.HasPrefix(id, "TK") {
		return PaymentToken{}, fmt.Errorf("%w, got %q", ErrInvalidTokenFormat, id)
	}

	return PaymentToken{
		ID:       id,
		Brand:    stringField(fields, "UNKNOWN", "brand", "brand_name"),
		LastFour: stringField(fields, "0000", "last_four", "lastFour", "last4"),
	}, nil
}

func stringField(fields map[string]interface{}, fallback string, names ...string) string {
	for _, name := range names {
		if v, ok := fields[name].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}

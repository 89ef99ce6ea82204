package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProductID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr error
	}{
		{"valid", `42`, 42, nil},
		{"int4 max", `2147483647`, 2147483647, nil},
		{"beyond int4", `2147483648`, 0, ErrProductIDOutOfRange},
		{"js safe integer", `9007199254740991`, 0, ErrProductIDOutOfRange},
		{"beyond int64", `92233720368547758070`, 0, ErrProductIDOutOfRange},
		{"padded", ` 7 `, 7, nil},
		{"missing", ``, 0, ErrMissingProductID},
		{"null", `null`, 0, ErrMissingProductID},
		{"string", `"abc"`, 0, ErrProductIDNotNumber},
		{"numeric string", `"42"`, 0, ErrProductIDNotNumber},
		{"boolean", `true`, 0, ErrProductIDNotNumber},
		{"object", `{"id":1}`, 0, ErrProductIDNotNumber},
		{"fraction", `4.2`, 0, ErrProductIDNotInteger},
		{"exponent", `1e3`, 0, ErrProductIDNotInteger},
		{"zero", `0`, 0, ErrProductIDNotPositive},
		{"negative", `-3`, 0, ErrProductIDNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProductID(json.RawMessage(tt.raw))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"view", `"view"`, "view", nil},
		{"click", `"click"`, "click", nil},
		{"unknown name passes through", `"purchase"`, "purchase", nil},
		{"missing", ``, "", ErrMissingAction},
		{"null", `null`, "", ErrMissingAction},
		{"empty", `""`, "", ErrMissingAction},
		{"blank", `"   "`, "", ErrMissingAction},
		{"number", `5`, "", ErrActionNotString},
		{"array", `["view"]`, "", ErrActionNotString},
		{"object", `{"name":"view"}`, "", ErrActionNotString},
		{"boolean", `true`, "", ErrActionNotString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAction(json.RawMessage(tt.raw))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

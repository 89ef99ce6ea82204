package validator

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// maxProductID matches the INTEGER product_id columns
const maxProductID = math.MaxInt32

// ParseProductID validates a raw JSON product identifier. Only positive
// integral JSON numbers are accepted; strings such as "42" are rejected.
func ParseProductID(raw json.RawMessage) (int64, error) {
	if isAbsent(raw) {
		return 0, ErrMissingProductID
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return 0, ErrProductIDNotNumber
	}

	num, ok := value.(json.Number)
	if !ok {
		return 0, ErrProductIDNotNumber
	}

	id, err := num.Int64()
	if err != nil {
		if _, ferr := num.Float64(); ferr == nil && !strings.ContainsAny(num.String(), ".eE") {
			// Integral but wider than int64.
			return 0, ErrProductIDOutOfRange
		}
		return 0, ErrProductIDNotInteger
	}
	if id <= 0 {
		return 0, ErrProductIDNotPositive
	}
	if id > maxProductID {
		return 0, ErrProductIDOutOfRange
	}

	return id, nil
}

// ParseAction extracts the action name from a raw JSON value. It checks the
// wire shape only; which names are tracked is decided by the domain.
func ParseAction(raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", ErrMissingAction
	}

	var action string
	if err := json.Unmarshal(raw, &action); err != nil {
		return "", ErrActionNotString
	}
	if strings.TrimSpace(action) == "" {
		return "", ErrMissingAction
	}

	return action, nil
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

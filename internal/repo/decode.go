package repo

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UnmarshalJSON accepts loosely typed feed items. Scalar text fields keep
// their literal text, the amount may be a number or a numeric string, and
// anything that cannot be coerced is left at its zero value. An item that
// is not an object decodes to an empty Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	*t = Transaction{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	t.Type = looseString(fields["tx_type"])
	t.Merchant = looseString(fields["merchant"])
	t.Amount = looseAmount(fields["amount"])
	t.Status = looseString(fields["status"])
	t.Time = looseString(fields["time"])
	return nil
}

func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case 't', 'f', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

func looseAmount(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
	"github.com/shopspring/decimal"
)

// UnknownDisplay is rendered in place of values the control API left empty.
const UnknownDisplay = "—"

// isBlankJSON reports whether a raw JSON value is null or an empty string.
func isBlankJSON(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || string(data) == "null" || string(data) == `""`
}

// OptionalInt is an integer that may be unknown. The control API reports
// unknown counts as an empty string.
type OptionalInt struct {
	Value int64
	Valid bool
}

func KnownInt(v int64) OptionalInt {
	return OptionalInt{Value: v, Valid: true}
}

func (o OptionalInt) String() string {
	if !o.Valid {
		return UnknownDisplay
	}
	return strconv.FormatInt(o.Value, 10)
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	if isBlankJSON(data) {
		*o = OptionalInt{}
		return nil
	}
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		// integral floats such as 12.0
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int64(f)) {
			return errors.Wrapf(errs.InvalidArgument, "invalid integer %s", string(data))
		}
		v = int64(f)
	}
	*o = KnownInt(v)
	return nil
}

// OptionalDecimal is a decimal amount that may be absent.
type OptionalDecimal struct {
	Value decimal.Decimal
	Valid bool
}

func KnownDecimal(v decimal.Decimal) OptionalDecimal {
	return OptionalDecimal{Value: v, Valid: true}
}

func (o OptionalDecimal) String() string {
	if !o.Valid {
		return UnknownDisplay
	}
	return o.Value.String()
}

func (o OptionalDecimal) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value.String())
}

func (o *OptionalDecimal) UnmarshalJSON(data []byte) error {
	if isBlankJSON(data) {
		*o = OptionalDecimal{}
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(bytes.TrimSpace(data)); err != nil {
		return errors.Wrapf(errs.InvalidArgument, "invalid decimal %s", string(data))
	}
	*o = KnownDecimal(d)
	return nil
}

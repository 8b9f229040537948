package entity

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/pool-portal/common/errs"
)

const MaxRating = 5

// Rating is a pool rating clamped to [0, MaxRating].
type Rating float64

func NewRating(v float64) Rating {
	switch {
	case v < 0:
		return 0
	case v > MaxRating:
		return MaxRating
	}
	return Rating(v)
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	if isBlankJSON(data) {
		*r = 0
		return nil
	}
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrapf(errs.InvalidArgument, "invalid rating %s", string(data))
	}
	*r = NewRating(v)
	return nil
}

// Pool is a storage pool offered by a provider, keyed by Address.
type Pool struct {
	Address   string          `json:"address"`
	Name      string          `json:"name"`
	Location  string          `json:"location"`
	Rating    Rating          `json:"rating"`
	NodeCount OptionalInt     `json:"nodeCount"`
	Earnings  OptionalDecimal `json:"earnings"`
}

func (p Pool) NameDisplay() string {
	return orUnknown(p.Name)
}

func (p Pool) LocationDisplay() string {
	return orUnknown(p.Location)
}

func (p Pool) NodeCountDisplay() string {
	return p.NodeCount.String()
}

// EarningsDisplay renders the earnings rate per gigabyte.
func (p Pool) EarningsDisplay() string {
	if !p.Earnings.Valid {
		return UnknownDisplay
	}
	return p.Earnings.Value.String() + " GLA/GB"
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return UnknownDisplay
	}
	return s
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Order reference format: a fixed prefix followed by a UTC timestamp
// decomposition, each component zero-padded to fixed width:
//
//	"OD" + YYYY + MM + DD + hh + mm + ss + SSS
//
// The fixed total length and big-endian field order make references lexically
// sortable in creation order (for instants at least 1ms apart). Two orders
// created within the same millisecond in the same process collide; the orders
// table carries a unique constraint on the reference, which is the real
// uniqueness guarantee.
const (
	OrderReferencePrefix = "OD"
	OrderReferenceLength = 19
)

// NewOrderReference generates the order reference code for the given instant.
// Pure function of its input: no state, no I/O, no failure path.
func NewOrderReference(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s%s%03d",
		OrderReferencePrefix,
		t.Format("20060102150405"),
		t.Nanosecond()/int(time.Millisecond),
	)
}

// ParseOrderReference extracts the creation instant from a reference code.
// It validates the prefix, length, and digit fields.
func ParseOrderReference(ref string) (time.Time, error) {
	if len(ref) != OrderReferenceLength || !strings.HasPrefix(ref, OrderReferencePrefix) {
		return time.Time{}, fmt.Errorf("malformed order reference %q", ref)
	}

	digits := ref[len(OrderReferencePrefix):]
	base, err := time.Parse("20060102150405", digits[:14])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed order reference %q: %w", ref, err)
	}

	var ms int
	if _, err := fmt.Sscanf(digits[14:], "%03d", &ms); err != nil || ms > 999 {
		return time.Time{}, fmt.Errorf("malformed order reference %q", ref)
	}

	return base.Add(time.Duration(ms) * time.Millisecond), nil
}

package enums

import "fmt"

// LineKind distinguishes the two line-item payloads a cart can hold.
type LineKind string

const (
	LineKindProduct LineKind = "product"
	LineKindService LineKind = "service"
)

var validLineKinds = []LineKind{
	LineKindProduct,
	LineKindService,
}

// String implements fmt.Stringer.
func (l LineKind) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineKind.
func (l LineKind) IsValid() bool {
	for _, candidate := range validLineKinds {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseLineKind converts raw input into a LineKind.
func ParseLineKind(value string) (LineKind, error) {
	for _, candidate := range validLineKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line kind %q", value)
}

package models

import (
	"fmt"
	"regexp"
	"strings"
)

var priceRe = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// Price is a fixed-point decimal kept in its textual form so that the scale
// chosen by the store ("1234.50") survives every cache and serialization hop.
type Price string

// ParsePrice validates s as a plain decimal literal.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if !priceRe.MatchString(s) {
		return "", fmt.Errorf("invalid price %q", s)
	}
	return Price(s), nil
}

// MustParsePrice is like ParsePrice but panics on invalid input.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the exact decimal text.
func (p Price) String() string {
	return string(p)
}

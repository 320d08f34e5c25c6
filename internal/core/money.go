// Package core provides the toll domain types, money parsing and the
// aggregation helpers used by reports.
//
// This file contains functions for parsing tariff amounts typed by the user
// into exact decimals.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-typed amount into an exact decimal.
//
// It accepts both dot (2.50) and comma (2,50) decimal separators. Signs,
// exponents, thousands separators and anything non-numeric are rejected
// with ErrInvalidAmount. Zero is accepted since some roads are free for
// some categories.
//
// Examples:
//
//	ParseAmount("2.50")  -> 2.5, nil
//	ParseAmount(" 2,5 ") -> 2.5, nil
//	ParseAmount("0")     -> 0, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) || r > unicode.MaxASCII {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount without trailing zeros, e.g. "2.5".
func FormatAmount(d decimal.Decimal) string {
	return d.String()
}

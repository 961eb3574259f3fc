package utils

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidMSISDN is returned for any number that cannot be canonicalised
var ErrInvalidMSISDN = errors.New("invalid phone number: use 07XXXXXXXX or 2547XXXXXXXX")

var (
	localPattern     = regexp.MustCompile(`^07\d{8}$`)
	canonicalPattern = regexp.MustCompile(`^2547\d{8}$`)
)

// NormalizeMSISDN validates a Kenyan mobile number and returns it as 2547XXXXXXXX.
// Spaces, dashes and a leading plus are stripped before matching.
func NormalizeMSISDN(raw string) (string, error) {
	stripped := strings.TrimSpace(raw)
	stripped = strings.ReplaceAll(stripped, " ", "")
	stripped = strings.ReplaceAll(stripped, "-", "")
	stripped = strings.TrimPrefix(stripped, "+")

	switch {
	case localPattern.MatchString(stripped):
		return "254" + stripped[1:], nil
	case canonicalPattern.MatchString(stripped):
		return stripped, nil
	default:
		return "", ErrInvalidMSISDN
	}
}

// MaskMSISDN hides the middle digits for logging
func MaskMSISDN(msisdn string) string {
	if len(msisdn) < 8 {
		return "***"
	}
	return msisdn[:5] + strings.Repeat("*", len(msisdn)-8) + msisdn[len(msisdn)-3:]
}

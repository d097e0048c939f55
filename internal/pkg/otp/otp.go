// Package otp generates and compares the numeric one-time codes sent by SMS.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Codes are drawn uniformly from [Min, Max], so every code has exactly
// Length digits and never carries a leading zero.
const (
	Min    = 10000
	Max    = 99999
	Length = 5
)

// Generate returns a uniformly random code in [Min, Max].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(Max-Min+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+Min), nil
}

// Normalize trims surrounding whitespace from a submitted code.
func Normalize(code string) string {
	return strings.TrimSpace(code)
}

// Equal compares a stored code with a submitted one as fixed-width strings.
// "01234" and "1234" are different codes.
func Equal(stored, submitted string) bool {
	submitted = Normalize(submitted)
	if len(stored) != len(submitted) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// Code is a submitted verification code. It decodes from either a JSON
// string or a JSON number, so clients that send 41523 and "41523" agree.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = Code(Normalize(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("code must be a string or a number")
	}
	if _, err := n.Int64(); err != nil {
		return fmt.Errorf("code must be an integer")
	}
	*c = Code(n.String())
	return nil
}

// Package mac provides the MAC address value type used throughout wifisync.
// Addresses are held in canonical form: lowercase hex octets joined by
// colons. Two addresses are equal iff their canonical forms match, so
// values parsed from differently-cased input compare equal.
package mac

import (
	"strings"

	"github.com/efgnet/wifisync/pkg/errors"
)

// Address is a MAC address in canonical form (lowercase, colon-separated,
// six two-hex-digit groups). The zero value is not a valid address; use
// Parse to construct one.
type Address string

// Parse validates and canonicalizes a MAC address string. Construction
// fails for anything that does not decompose into exactly six
// colon-separated two-hex-digit groups.
func Parse(s string) (Address, error) {
	groups := strings.Split(s, ":")
	if len(groups) != 6 {
		return "", &errors.InvalidMACError{Value: s, Message: "must have 6 colon-separated groups"}
	}
	for _, g := range groups {
		if len(g) != 2 || !isHex(g[0]) || !isHex(g[1]) {
			return "", &errors.InvalidMACError{Value: s, Message: "groups must be two hex digits"}
		}
	}
	return Address(strings.ToLower(s)), nil
}

// MustParse parses a MAC address and panics on failure. For tests and
// fixtures only.
func MustParse(s string) Address {
	addr, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns the canonical textual form.
func (a Address) String() string {
	return string(a)
}

// IsValid reports whether the address is a parsed, canonical value.
func (a Address) IsValid() bool {
	_, err := Parse(string(a))
	return err == nil && strings.ToLower(string(a)) == string(a)
}

// Strings converts a slice of addresses to their canonical string forms,
// as sent on the wire to the controller.
func Strings(addrs []Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func isHex(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'f':
		return true
	case c >= 'A' && c <= 'F':
		return true
	}
	return false
}

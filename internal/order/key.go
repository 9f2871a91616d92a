package order

import (
	"errors"
	"strings"
)

// Keys are lowercase base36-like strings compared lexicographically. A key is
// regenerated only for the task being moved, never for its siblings, so a move
// touches exactly one row regardless of container size.

const keyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const base = len(keyAlphabet)

// InitialKey is the key handed to the first member of a container. Starting
// from the middle of the alphabet keeps keys short when inserts alternate
// between head and tail.
const InitialKey = "i"

func keyDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return 10 + int(c-'a'), true
	default:
		return 0, false
	}
}

func keyChar(d int) byte {
	if d < 0 {
		d = 0
	}
	if d > base-1 {
		d = base - 1
	}
	return keyAlphabet[d]
}

func normalize(k string) string {
	return strings.ToLower(strings.TrimSpace(k))
}

func validate(k string) error {
	for i := 0; i < len(k); i++ {
		if _, ok := keyDigit(k[i]); !ok {
			return errors.New("invalid key character")
		}
	}
	return nil
}

// KeyAfter returns a key sorting strictly after k. An empty k means "first
// item ever" and yields InitialKey.
func KeyAfter(k string) (string, error) {
	k = normalize(k)
	if k == "" {
		return InitialKey, nil
	}
	return between(k, "")
}

// KeyBefore returns a key sorting strictly before k. An empty k means the
// container is empty and yields InitialKey.
func KeyBefore(k string) (string, error) {
	k = normalize(k)
	if k == "" {
		return InitialKey, nil
	}
	return between("", k)
}

// KeyBetween returns a key strictly between lower and upper, which must
// satisfy lower < upper lexicographically.
func KeyBetween(lower, upper string) (string, error) {
	lower = normalize(lower)
	upper = normalize(upper)
	if lower == "" || upper == "" {
		return "", errors.New("KeyBetween requires both bounds")
	}
	return between(lower, upper)
}

// between computes a lexicographic midpoint and verifies strict ordering
// against both bounds. Degenerate bounds from historical data (an all-zeros
// key, or an upper bound that extends the lower with only zeros) admit no
// midpoint; they error instead of yielding a key that sorts outside its
// bounds.
func between(a, b string) (string, error) {
	out, err := midpoint(a, b)
	if err != nil {
		return "", err
	}
	if (a != "" && out <= a) || (b != "" && out >= b) {
		return "", errors.New("no space between keys")
	}
	return out, nil
}

// midpoint walks digit pairs left to right. An empty lower bound reads as
// "before everything", an empty upper bound as "after everything".
//
// A gap of two or more steps yields the middle digit and stops. Adjacent
// digits force the walk to commit to the lower digit and continue with the
// rest of the lower bound against an open upper bound, which always
// terminates: once the lower bound is exhausted the gap to the alphabet end
// is wide enough to emit a digit.
func midpoint(a, b string) (string, error) {
	if err := validate(a); err != nil {
		return "", err
	}
	if err := validate(b); err != nil {
		return "", err
	}
	if a != "" && b != "" && a >= b {
		return "", errors.New("key bounds not in order")
	}

	prefix := make([]byte, 0, len(b)+2)
	for {
		// Consume the shared prefix, reading missing lower digits as zero.
		if b != "" {
			n := 0
			for n < len(b) {
				da := 0
				if n < len(a) {
					da, _ = keyDigit(a[n])
				}
				db, _ := keyDigit(b[n])
				if da != db {
					break
				}
				n++
			}
			if n > 0 {
				prefix = append(prefix, b[:n]...)
				if n < len(a) {
					a = a[n:]
				} else {
					a = ""
				}
				b = b[n:]
				continue
			}
		}

		da := 0
		if a != "" {
			da, _ = keyDigit(a[0])
		}
		db := base
		if b != "" {
			db, _ = keyDigit(b[0])
		}
		if db <= da {
			// Only reachable when the upper bound extends the lower with the
			// minimal digit (e.g. "y" vs "y0"): no string fits between them.
			return "", errors.New("no space between keys")
		}
		if db-da > 1 {
			prefix = append(prefix, keyChar(da+(db-da)/2))
			return string(prefix), nil
		}

		// Adjacent digits. If the upper bound has more digits, cutting it off
		// at this one already lands strictly between the bounds.
		if len(b) > 1 {
			prefix = append(prefix, b[0])
			return string(prefix), nil
		}

		// Commit to the lower digit and keep walking the lower bound against
		// an open upper bound.
		prefix = append(prefix, keyChar(da))
		if a != "" {
			a = a[1:]
		}
		b = ""
	}
}

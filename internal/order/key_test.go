package order

import "testing"

func TestKeyBetween_StrictBetweenness(t *testing.T) {
	pairs := [][2]string{
		{"g", "t"},
		{"m", "t"},
		{"a", "b"},
		{"a", "a1"},
		{"i", "i05"},
		{"0i", "1"},
		{"az", "b"},
		{"b", "c1"},
		{"b1", "c"},
		{"i", "j"},
		{"zz", "zz1"},
	}
	for _, p := range pairs {
		lower, upper := p[0], p[1]
		got, err := KeyBetween(lower, upper)
		if err != nil {
			t.Fatalf("KeyBetween(%q, %q): %v", lower, upper, err)
		}
		if !(lower < got && got < upper) {
			t.Fatalf("KeyBetween(%q, %q) = %q, not strictly between", lower, upper, got)
		}
		again, err := KeyBetween(lower, upper)
		if err != nil || again != got {
			t.Fatalf("KeyBetween(%q, %q) not deterministic: %q vs %q (%v)", lower, upper, got, again, err)
		}
	}
}

func TestKeyBetween_RepeatedSubdivision(t *testing.T) {
	// Subdividing the same gap repeatedly must keep producing strictly
	// between keys without ever failing.
	lower, upper := "i", "j"
	for i := 0; i < 64; i++ {
		mid, err := KeyBetween(lower, upper)
		if err != nil {
			t.Fatalf("subdivision %d: KeyBetween(%q, %q): %v", i, lower, upper, err)
		}
		if !(lower < mid && mid < upper) {
			t.Fatalf("subdivision %d: %q not between %q and %q", i, mid, lower, upper)
		}
		if i%2 == 0 {
			lower = mid
		} else {
			upper = mid
		}
	}
}

func TestKeyAfterBefore_Ordering(t *testing.T) {
	for _, k := range []string{"i", "a", "z", "zz", "0i", "i0i", "m"} {
		after, err := KeyAfter(k)
		if err != nil {
			t.Fatalf("KeyAfter(%q): %v", k, err)
		}
		if !(k < after) {
			t.Fatalf("KeyAfter(%q) = %q does not sort after", k, after)
		}
		before, err := KeyBefore(k)
		if err != nil {
			t.Fatalf("KeyBefore(%q): %v", k, err)
		}
		if !(before < k) {
			t.Fatalf("KeyBefore(%q) = %q does not sort before", k, before)
		}
	}
}

func TestKeyAfterBefore_EmptyYieldsInitial(t *testing.T) {
	if k, err := KeyAfter(""); err != nil || k != InitialKey {
		t.Fatalf("KeyAfter(\"\") = %q, %v; want %q", k, err, InitialKey)
	}
	if k, err := KeyBefore(""); err != nil || k != InitialKey {
		t.Fatalf("KeyBefore(\"\") = %q, %v; want %q", k, err, InitialKey)
	}
}

func TestKeyBefore_HeadInsertsReverseOrder(t *testing.T) {
	// Inserting N items at the head of an initially empty container must
	// read back in exact reverse insertion order.
	keys := make([]string, 0, 40)
	first, err := KeyAfter("")
	if err != nil {
		t.Fatalf("initial key: %v", err)
	}
	keys = append(keys, first)
	for i := 0; i < 39; i++ {
		k, err := KeyBefore(keys[len(keys)-1])
		if err != nil {
			t.Fatalf("head insert %d: %v", i, err)
		}
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		if !(keys[i] < keys[i-1]) {
			t.Fatalf("head insert %d: %q should sort before %q", i, keys[i], keys[i-1])
		}
	}
}

func TestKeyAfter_LongTailStaysOrdered(t *testing.T) {
	k, err := KeyAfter("")
	if err != nil {
		t.Fatalf("initial key: %v", err)
	}
	for i := 0; i < 200; i++ {
		next, err := KeyAfter(k)
		if err != nil {
			t.Fatalf("tail insert %d: %v", i, err)
		}
		if !(k < next) {
			t.Fatalf("tail insert %d: %q should sort after %q", i, next, k)
		}
		k = next
	}
}

func TestKeyBetween_PrefixAdjacent_NoSpace(t *testing.T) {
	// "y" < "y0" but no string sorts strictly between them: '0' is the
	// minimal digit and end-of-string sorts before any digit.
	if _, err := KeyBetween("y", "y0"); err == nil {
		t.Fatalf("expected error for prefix-adjacent bounds, got nil")
	}
}

func TestKeyBefore_AllZerosBound_NoSpace(t *testing.T) {
	// Keys never get minted with a trailing '0', but historical data may
	// carry them. Nothing sorts strictly before an all-zeros key, so these
	// must error rather than hand back a key that sorts after its bound.
	for _, k := range []string{"0", "00", "000"} {
		got, err := KeyBefore(k)
		if err == nil {
			t.Fatalf("KeyBefore(%q) = %q, want error", k, got)
		}
	}
	if _, err := KeyBetween("00", "000"); err == nil {
		t.Fatalf("expected error for zero-extended bounds")
	}
}

func TestKeyBetween_InvalidInput(t *testing.T) {
	if _, err := KeyBetween("t", "g"); err == nil {
		t.Fatalf("expected error for out-of-order bounds")
	}
	if _, err := KeyBetween("a!", "b"); err == nil {
		t.Fatalf("expected error for invalid key character")
	}
	if _, err := KeyBetween("", "b"); err == nil {
		t.Fatalf("expected error for missing lower bound")
	}
}

package model

// NaturalLess compares two labels with numeric runs compared by magnitude
// rather than lexicographically, so "STW 500" sorts before "STW 1000".
// Non-numeric runs compare byte-wise.
func NaturalLess(a, b string) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		da, db := isDigit(ca), isDigit(cb)

		switch {
		case da && db:
			// Compare whole numeric runs by magnitude, then by length to
			// keep zero-padded labels ordered deterministically.
			ia, na := numericRunEnd(a, i)
			ib, nb := numericRunEnd(b, j)
			if na != nb {
				return na < nb
			}
			if ia-i != ib-j {
				return ia-i < ib-j
			}
			i, j = ia, ib
		case da != db:
			return da
		default:
			if ca != cb {
				return ca < cb
			}
			i++
			j++
		}
	}
	return len(a)-i < len(b)-j
}

// numericRunEnd returns the index past the numeric run starting at i and
// the run's value with leading zeros skipped. Values are compared as
// trimmed strings of equal significance, encoded as uint64 with saturation
// for absurdly long runs.
func numericRunEnd(s string, i int) (int, uint64) {
	var v uint64
	saturated := false
	for i < len(s) && isDigit(s[i]) {
		if !saturated {
			next := v*10 + uint64(s[i]-'0')
			if next < v {
				saturated = true
				v = ^uint64(0)
			} else {
				v = next
			}
		}
		i++
	}
	return i, v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

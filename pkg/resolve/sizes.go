package resolve

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

var (
	sizeSeparator = regexp.MustCompile(`[xX*/]`)
	numericRun    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseSizeTokens extracts the numeric tokens from a size attribute.
// "700x500x700" yields [700 500 700]; "DN150" yields [150]. Unparsable
// input yields an empty slice, never an error; a malformed size degrades to
// "no diameter known".
func ParseSizeTokens(size string) []float64 {
	size = strings.TrimSpace(size)
	if size == "" {
		return nil
	}

	var tokens []float64
	for _, part := range sizeSeparator.Split(size, -1) {
		m := numericRun.FindString(part)
		if m == "" {
			continue
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// NominalDiameter reads a component's own nominal diameter from its size
// attribute: the first numeric token. Numeric property values are used
// directly.
func NominalDiameter(c *model.Component) (float64, bool) {
	v, ok := c.Property(model.PropNominalSize)
	if !ok {
		return 0, false
	}
	if f, err := v.AsFloat(); err == nil {
		if f > 0 {
			return f, true
		}
		return 0, false
	}
	s, err := v.AsString()
	if err != nil {
		return 0, false
	}
	tokens := ParseSizeTokens(s)
	if len(tokens) == 0 || tokens[0] <= 0 {
		return 0, false
	}
	return tokens[0], true
}

// SizeTokens reads all numeric tokens of a component's size attribute.
func SizeTokens(c *model.Component) []float64 {
	v, ok := c.Property(model.PropNominalSize)
	if !ok {
		return nil
	}
	if f, err := v.AsFloat(); err == nil {
		if f > 0 {
			return []float64{f}
		}
		return nil
	}
	s, err := v.AsString()
	if err != nil {
		return nil
	}
	return ParseSizeTokens(s)
}

// RunBranchFromTokens derives run and branch diameters from size tokens.
// A repeated value is the run and the odd one out is the branch; otherwise
// the run is the largest token and the branch the smallest.
func RunBranchFromTokens(tokens []float64) (run, branch float64, ok bool) {
	if len(tokens) < 2 {
		return 0, 0, false
	}

	counts := make(map[float64]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	if len(counts) == 1 {
		return tokens[0], tokens[0], true
	}

	// Scan tokens in listed order so repeated ties and multiple singletons
	// resolve the same way on every run.
	var repeated, odd float64
	var haveRepeated, haveOdd bool
	for _, t := range tokens {
		if counts[t] > 1 {
			if !haveRepeated {
				repeated = t
				haveRepeated = true
			}
		} else if !haveOdd {
			odd = t
			haveOdd = true
		}
	}
	if haveRepeated && haveOdd {
		return repeated, odd, true
	}

	run, branch = tokens[0], tokens[0]
	for _, t := range tokens {
		if t > run {
			run = t
		}
		if t < branch {
			branch = t
		}
	}
	return run, branch, true
}

package hyperv

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Quote renders s as a single-quoted PowerShell literal.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func boolLiteral(b bool) string {
	if b {
		return "$true"
	}
	return "$false"
}

var sizeUnits = []struct {
	suffix string
	factor uint64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize reads a Hyper-V size such as "4GB" or "256MB". Units are binary,
// as they are for PowerShell's numeric suffixes. A bare number is bytes.
func ParseSize(s string) (uint64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty size")
	}
	factor := uint64(1)
	for _, unit := range sizeUnits {
		if strings.HasSuffix(v, unit.suffix) {
			v = strings.TrimSpace(strings.TrimSuffix(v, unit.suffix))
			factor = unit.factor
			break
		}
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n > math.MaxUint64/factor {
		return 0, fmt.Errorf("size %q is too large", s)
	}
	return n * factor, nil
}

// script accumulates PowerShell statements.
type script struct {
	lines []string
}

func (s *script) add(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func (s *script) String() string {
	return strings.Join(s.lines, "; ")
}

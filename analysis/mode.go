package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects the analysis to run. It is a closed set; Engine.Analyze
// switches over every value.
type Mode int

const (
	ModeLimit Mode = iota + 1
	ModeDerivative
	ModeCriticalPoints
	ModeIntegral
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeLimit, ModeDerivative, ModeCriticalPoints, ModeIntegral}

var modeNames = map[Mode]string{
	ModeLimit:          "limit",
	ModeDerivative:     "derivative",
	ModeCriticalPoints: "critical_points",
	ModeIntegral:       "integral",
}

// modeAliases adds the Portuguese form values and a hyphenated spelling.
var modeAliases = map[string]Mode{
	"limit":           ModeLimit,
	"limite":          ModeLimit,
	"derivative":      ModeDerivative,
	"derivada":        ModeDerivative,
	"critical_points": ModeCriticalPoints,
	"critical-points": ModeCriticalPoints,
	"pontos_criticos": ModeCriticalPoints,
	"integral":        ModeIntegral,
}

// ModeNames returns every accepted spelling, canonical names first.
func ModeNames() []string {
	var aliases []string
	for alias, m := range modeAliases {
		if alias != modeNames[m] {
			aliases = append(aliases, alias)
		}
	}
	sort.Strings(aliases)
	out := make([]string, 0, len(modeAliases))
	for _, m := range Modes {
		out = append(out, modeNames[m])
	}
	return append(out, aliases...)
}

func ParseMode(s string) (Mode, error) {
	if m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, s)
}

func (m Mode) Valid() bool { _, ok := modeNames[m]; return ok }

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText never fails so error envelopes for bad modes still encode.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

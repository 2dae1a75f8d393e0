package model

// Color is a categorical display tag assigned per company.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorPurple Color = "purple"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
	ColorTeal   Color = "teal"
	ColorRed    Color = "red"
	ColorIndigo Color = "indigo"
)

// DefaultPalette is the fixed palette companies cycle through in
// first-seen order.
var DefaultPalette = []Color{
	ColorBlue,
	ColorGreen,
	ColorPurple,
	ColorOrange,
	ColorPink,
	ColorTeal,
	ColorRed,
	ColorIndigo,
}

var colorHex = map[Color]string{
	ColorBlue:   "#3b82f6",
	ColorGreen:  "#22c55e",
	ColorPurple: "#a855f7",
	ColorOrange: "#f97316",
	ColorPink:   "#ec4899",
	ColorTeal:   "#14b8a6",
	ColorRed:    "#ef4444",
	ColorIndigo: "#6366f1",
}

// Hex returns a CSS color for c, or a neutral gray for unknown tags.
func (c Color) Hex() string {
	if h, ok := colorHex[c]; ok {
		return h
	}
	return "#6b7280"
}

// ParsePalette converts configured names into a palette, dropping blanks.
// An empty result falls back to DefaultPalette.
func ParsePalette(names []string) []Color {
	out := make([]Color, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		out = append(out, Color(n))
	}
	if len(out) == 0 {
		return DefaultPalette
	}
	return out
}

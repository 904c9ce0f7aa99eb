package style

import (
	"image/color"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

var namedColors = map[string]ansi.BasicColor{
	"black":         ansi.Black,
	"red":           ansi.Red,
	"green":         ansi.Green,
	"yellow":        ansi.Yellow,
	"blue":          ansi.Blue,
	"magenta":       ansi.Magenta,
	"cyan":          ansi.Cyan,
	"white":         ansi.White,
	"gray":          ansi.BrightBlack,
	"grey":          ansi.BrightBlack,
	"blackbright":   ansi.BrightBlack,
	"redbright":     ansi.BrightRed,
	"greenbright":   ansi.BrightGreen,
	"yellowbright":  ansi.BrightYellow,
	"bluebright":    ansi.BrightBlue,
	"magentabright": ansi.BrightMagenta,
	"cyanbright":    ansi.BrightCyan,
	"whitebright":   ansi.BrightWhite,
}

// ParseColor converts a color declaration into a color. It accepts the
// sixteen ANSI color names ("red", "redBright", "gray"), "#rgb" and
// "#rrggbb" hex strings, ANSI 256 indices as numbers or numeric strings,
// and "rgb(r, g, b)".
func ParseColor(v any) (color.Color, bool) {
	switch x := v.(type) {
	case int, int64, float64:
		n, ok := toInt(x)
		if !ok || n < 0 {
			return nil, false
		}
		return lipglossColor(strconv.Itoa(n))
	case string:
		return parseColorString(strings.TrimSpace(x))
	}
	return nil, false
}

func parseColorString(s string) (color.Color, bool) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	if c, ok := namedColors[key]; ok {
		return c, true
	}
	if args, ok := strings.CutPrefix(key, "rgb("); ok {
		args, ok = strings.CutSuffix(args, ")")
		if !ok {
			return nil, false
		}
		parts := strings.Split(args, ",")
		if len(parts) != 3 {
			return nil, false
		}
		var rgb [3]uint8
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 10, 8)
			if err != nil {
				return nil, false
			}
			rgb[i] = uint8(n)
		}
		return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, true
	}
	return lipglossColor(s)
}

func lipglossColor(s string) (color.Color, bool) {
	c := lipgloss.Color(s)
	if _, invalid := c.(lipgloss.NoColor); invalid {
		return nil, false
	}
	return c, true
}
